package xetcd2

import (
	"crypto/tls"
	"net/http"
	"time"
)

// options 内部选项结构。
type options struct {
	httpClient     Doer
	breakerEnabled bool
	breakerMinReqs uint32
	breakerRatio   float64
	breakerTimeout time.Duration
}

// defaultOptions 返回默认选项。
func defaultOptions() *options {
	return &options{
		breakerMinReqs: 5,
		breakerRatio:   0.6,
		breakerTimeout: 30 * time.Second,
	}
}

// Option 定义客户端配置选项。
type Option func(*options)

// WithHTTPClient 设置自定义 HTTP 客户端。
// 默认使用不带 Timeout 的 http.Client，单次请求超时由
// Config.RequestTimeout 按请求施加。
// 设计决策: 接受 Doer 接口而非 *http.Client，便于测试注入桩实现，
// 也允许调用方包一层做请求级别的埋点。
func WithHTTPClient(c Doer) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTransport 设置底层 http.Transport（或任意 RoundTripper）。
// 与 WithHTTPClient 互斥时以 WithHTTPClient 为准。
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil && o.httpClient == nil {
			o.httpClient = &http.Client{Transport: rt}
		}
	}
}

// WithTLS 设置 https 端点的 TLS 配置（证书校验、客户端证书等）。
// 与 WithHTTPClient 互斥时以 WithHTTPClient 为准。
func WithTLS(tlsCfg *tls.Config) Option {
	return func(o *options) {
		if tlsCfg != nil && o.httpClient == nil {
			o.httpClient = &http.Client{
				Transport: &http.Transport{TLSClientConfig: tlsCfg},
			}
		}
	}
}

// WithBreaker 为每个端点启用熔断器。
// minRequests 为熔断判定的最小请求数，ratio 为失败率阈值（0~1），
// timeout 为熔断打开后进入半开状态的等待时间。
// 非法参数使用默认值（5 次 / 0.6 / 30 秒）。
//
// 熔断打开的端点在调用中记录 gobreaker.ErrOpenState 后继续尝试
// 下一个端点，端点顺序与每端点至多一次尝试的语义不受影响。
func WithBreaker(minRequests uint32, ratio float64, timeout time.Duration) Option {
	return func(o *options) {
		o.breakerEnabled = true
		if minRequests > 0 {
			o.breakerMinReqs = minRequests
		}
		if ratio > 0 && ratio <= 1 {
			o.breakerRatio = ratio
		}
		if timeout > 0 {
			o.breakerTimeout = timeout
		}
	}
}
