package xetcd2

import (
	"context"
	"net/url"
)

// HealthInfo 单个成员的健康状态（GET /health）。
type HealthInfo struct {
	// Health 成员是否健康，服务端返回字符串 "true"/"false"。
	Health string `json:"health"`
}

// IsHealthy 报告成员是否健康。
func (h HealthInfo) IsHealthy() bool {
	return h.Health == "true"
}

// VersionInfo 单个成员的版本信息（GET /version）。
type VersionInfo struct {
	// ClusterVersion 集群协议版本。
	ClusterVersion string `json:"etcdcluster"`

	// ServerVersion 该成员的服务端版本。
	ServerVersion string `json:"etcdserver"`
}

// Health 并发检查每个成员的健康状态。
// 健康是成员各自的属性，不做故障转移，逐成员返回结果。
func (c *Client) Health(ctx context.Context) []MemberResult[HealthInfo] {
	return fanOut(ctx, c, func(ctx context.Context, base *url.URL) (*Response[HealthInfo], error) {
		return statsGet[HealthInfo](ctx, c, base, "/health")
	})
}

// Versions 并发查询每个成员的版本信息。
// 滚动升级期间各成员的 ServerVersion 可能不同。
func (c *Client) Versions(ctx context.Context) []MemberResult[VersionInfo] {
	return fanOut(ctx, c, func(ctx context.Context, base *url.URL) (*Response[VersionInfo], error) {
		return statsGet[VersionInfo](ctx, c, base, "/version")
	})
}
