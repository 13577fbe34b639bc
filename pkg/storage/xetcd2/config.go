package xetcd2

import (
	"fmt"
	"net/url"
	"time"
)

// Config etcd v2 客户端配置。
// 支持 JSON/YAML 反序列化，亦可通过 LoadConfig 从文件加载。
//
// 推荐使用 DefaultConfig() 获取带有推荐默认值的配置，然后按需覆盖：
//
//	cfg := xetcd2.DefaultConfig()
//	cfg.Endpoints = []string{"http://localhost:2379"}
//	client, err := xetcd2.NewClient(cfg)
type Config struct {
	// Endpoints 集群成员的基地址列表，必填。
	// 格式：["http://host1:2379", "http://host2:2379"]
	// 列表在客户端生命周期内固定，操作按此顺序逐个尝试。
	Endpoints []string `json:"endpoints" yaml:"endpoints"`

	// Username HTTP Basic 认证用户名（可选）。
	// 启用 v2 auth 时需要配置。
	Username string `json:"username" yaml:"username"`

	// Password HTTP Basic 认证密码（可选）。
	Password string `json:"password" yaml:"password"`

	// RequestTimeout 单个端点单次 HTTP 请求的超时。
	// 零值时使用默认值 5 秒。不约束 Watch 长轮询。
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`

	// WatchTimeout Watch 长轮询的默认超时，默认 0（无限等待）。
	// 单次 Watch 可通过 WatchOptions.Timeout 覆盖。
	WatchTimeout time.Duration `json:"watchTimeout" yaml:"watchTimeout"`

	// BreakerEnabled 是否为每个端点启用熔断器。
	// 熔断打开的端点在本次调用中记录熔断错误后跳到下一端点，
	// 端点顺序与"每端点至多一次"的语义不变。
	//
	// 注意：由于 Go 布尔零值为 false，直接使用 Config{} 时此字段为 false。
	BreakerEnabled bool `json:"breakerEnabled" yaml:"breakerEnabled"`
}

// 默认配置值。
const (
	defaultRequestTimeout = 5 * time.Second
)

// DefaultConfig 返回带有推荐默认值的配置。
//
// 默认值：
//   - RequestTimeout: 5 秒
//   - WatchTimeout: 0（无限等待）
//   - BreakerEnabled: false
//
// 示例：
//
//	cfg := xetcd2.DefaultConfig()
//	cfg.Endpoints = []string{"http://localhost:2379"}
//	cfg.Username = "root"
//	cfg.Password = "secret"
//	client, err := xetcd2.NewClient(cfg)
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: defaultRequestTimeout,
	}
}

// Validate 验证配置有效性。
// 检查必填字段是否已配置，并验证 endpoint 格式。
//
// 有效的 endpoint 为带 scheme 与 host 的完整 URL，例如：
//   - "http://localhost:2379"
//   - "https://etcd.example.com:2379"
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return ErrNoEndpoints
	}

	for i, ep := range c.Endpoints {
		if ep == "" {
			return fmt.Errorf("%w: endpoint[%d] is empty", ErrInvalidEndpoint, i)
		}
		u, err := url.Parse(ep)
		if err != nil {
			return fmt.Errorf("%w: endpoint[%d]=%q: %v", ErrInvalidEndpoint, i, ep, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: endpoint[%d]=%q scheme must be http or https", ErrInvalidEndpoint, i, ep)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: endpoint[%d]=%q missing host", ErrInvalidEndpoint, i, ep)
		}
	}

	return nil
}

// applyDefaults 应用默认值，返回新的配置（不修改原配置）。
func (c *Config) applyDefaults() *Config {
	cfg := *c // 复制，避免修改原配置
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return &cfg
}
