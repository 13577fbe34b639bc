package xetcd2

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/etcdkit/pkg/resilience/xfirstok"
)

// Client etcd v2 HTTP 客户端。
// 并发安全，可在多个 goroutine 间共享。
//
// 客户端持有一组有序的端点，生命周期内不变。每个操作按此顺序
// 逐个端点尝试，首个成功即返回；全部失败时返回 *ClusterError。
type Client struct {
	cfg        *Config
	endpoints  []*url.URL
	httpClient Doer
	breakers   *endpointBreakers
}

// NewClient 创建 etcd v2 客户端。
//
// 参数:
//   - cfg: 客户端配置，必填，至少包含一个端点
//   - opts: 可选配置项，见 Option
//
// 返回:
//   - *Client: 客户端实例
//   - error: 配置无效时返回 ErrNilConfig/ErrNoEndpoints/ErrInvalidEndpoint
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.applyDefaults()

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	endpoints := make([]*url.URL, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		u, err := url.Parse(ep)
		if err != nil {
			// Validate 已解析过一次，这里不会发生
			return nil, ErrInvalidEndpoint
		}
		endpoints[i] = u
	}

	c := &Client{
		cfg:       cfg,
		endpoints: endpoints,
	}

	if o.httpClient != nil {
		c.httpClient = o.httpClient
	} else {
		// 不设置 http.Client.Timeout：Watch 长轮询与普通请求共用同一
		// 客户端，普通请求的超时通过 reqCtx 按次施加。
		c.httpClient = &http.Client{}
	}

	if o.breakerEnabled || cfg.BreakerEnabled {
		c.breakers = newEndpointBreakers(o.breakerMinReqs, o.breakerRatio, o.breakerTimeout)
	}

	return c, nil
}

// Endpoints 返回配置的端点列表（副本），顺序与尝试顺序一致。
func (c *Client) Endpoints() []string {
	eps := make([]string, len(c.endpoints))
	for i, u := range c.endpoints {
		eps[i] = u.String()
	}
	return eps
}

// reqCtx 为单次请求施加 RequestTimeout。
// Watch 长轮询不经过此方法，其超时由 WatchOptions.Timeout 单独控制。
func (c *Client) reqCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// doFirst 按端点顺序逐个执行 fn，首个成功即返回。
// 全部失败时返回 *ClusterError，其中按遭遇顺序保留每个端点的错误。
// 设计决策: 包级泛型函数而非方法——Go 的方法不支持类型参数。
func doFirst[T any](ctx context.Context, c *Client, fn func(ctx context.Context, base *url.URL) (*Response[T], error)) (*Response[T], error) {
	result, errs := xfirstok.First(ctx, c.endpoints, fn)
	if errs != nil {
		return nil, &ClusterError{Errors: errs}
	}
	return result, nil
}

// MemberResult 面向全体成员操作（统计、健康检查、版本查询）中
// 单个成员的结果。Err 非 nil 时 Response 为 nil。
type MemberResult[T any] struct {
	// Endpoint 成员的基地址。
	Endpoint string

	// Response 该成员的响应。
	Response *Response[T]

	// Err 该成员的失败原因。
	Err error
}

// fanOut 并发地向所有端点执行 fn，返回与端点同序的逐成员结果。
// 单个成员失败不影响其他成员，失败记录在对应的 MemberResult.Err 中。
func fanOut[T any](ctx context.Context, c *Client, fn func(ctx context.Context, base *url.URL) (*Response[T], error)) []MemberResult[T] {
	results := make([]MemberResult[T], len(c.endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range c.endpoints {
		g.Go(func() error {
			resp, err := fn(gctx, ep)
			results[i] = MemberResult[T]{Endpoint: ep.String(), Response: resp, Err: err}
			return nil
		})
	}
	_ = g.Wait() // 逐成员错误已记录在 results 中

	return results
}
