package xetcd2

import (
	"context"
	"net/http"
	"net/url"
)

// LeaderStats leader 视角的集群统计（GET /v2/stats/leader）。
type LeaderStats struct {
	// Leader 当前 leader 的成员标识。
	Leader string `json:"leader"`

	// Followers 各 follower 的复制统计，键为成员标识。
	Followers map[string]FollowerStats `json:"followers"`
}

// FollowerStats 单个 follower 的复制统计。
type FollowerStats struct {
	// Counts 复制成功/失败计数。
	Counts FollowerCounts `json:"counts"`

	// Latency 复制延迟统计，单位毫秒。
	Latency FollowerLatency `json:"latency"`
}

// FollowerCounts follower 的复制计数。
type FollowerCounts struct {
	Fail    uint64 `json:"fail"`
	Success uint64 `json:"success"`
}

// FollowerLatency follower 的复制延迟分布。
type FollowerLatency struct {
	Average           float64 `json:"average"`
	Current           float64 `json:"current"`
	Maximum           float64 `json:"maximum"`
	Minimum           float64 `json:"minimum"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// SelfStats 单个成员的自身统计（GET /v2/stats/self）。
type SelfStats struct {
	// ID 成员标识。
	ID string `json:"id"`

	// Name 成员名称。
	Name string `json:"name"`

	// State 成员状态，"StateLeader" 或 "StateFollower"。
	State string `json:"state"`

	// StartTime 成员启动时间。
	StartTime string `json:"startTime"`

	// LeaderInfo 该成员眼中的 leader 信息。
	LeaderInfo LeaderInfo `json:"leaderInfo"`

	// RecvAppendRequestCnt 收到的追加请求数。
	RecvAppendRequestCnt uint64 `json:"recvAppendRequestCnt"`

	// RecvBandwidthRate 接收带宽（字节/秒），leader 无此字段。
	RecvBandwidthRate float64 `json:"recvBandwidthRate,omitempty"`

	// RecvPkgRate 接收速率（包/秒），leader 无此字段。
	RecvPkgRate float64 `json:"recvPkgRate,omitempty"`

	// SendAppendRequestCnt 发出的追加请求数。
	SendAppendRequestCnt uint64 `json:"sendAppendRequestCnt"`

	// SendBandwidthRate 发送带宽（字节/秒），follower 无此字段。
	SendBandwidthRate float64 `json:"sendBandwidthRate,omitempty"`

	// SendPkgRate 发送速率（包/秒），follower 无此字段。
	SendPkgRate float64 `json:"sendPkgRate,omitempty"`
}

// LeaderInfo 成员视角的 leader 信息。
type LeaderInfo struct {
	// Leader leader 的成员标识。
	Leader string `json:"leader"`

	// StartTime 本届任期的开始时间。
	StartTime string `json:"startTime"`

	// Uptime leader 的在任时长。
	Uptime string `json:"uptime"`
}

// StoreStats 单个成员的键空间操作统计（GET /v2/stats/store）。
type StoreStats struct {
	CompareAndSwapFail    uint64 `json:"compareAndSwapFail"`
	CompareAndSwapSuccess uint64 `json:"compareAndSwapSuccess"`
	CreateFail            uint64 `json:"createFail"`
	CreateSuccess         uint64 `json:"createSuccess"`
	DeleteFail            uint64 `json:"deleteFail"`
	DeleteSuccess         uint64 `json:"deleteSuccess"`
	ExpireCount           uint64 `json:"expireCount"`
	GetsFail              uint64 `json:"getsFail"`
	GetsSuccess           uint64 `json:"getsSuccess"`
	SetsFail              uint64 `json:"setsFail"`
	SetsSuccess           uint64 `json:"setsSuccess"`
	UpdateFail            uint64 `json:"updateFail"`
	UpdateSuccess         uint64 `json:"updateSuccess"`
	Watchers              uint64 `json:"watchers"`
}

// LeaderStats 查询 leader 视角的集群统计。
// 统计由 leader 维护，按端点顺序故障转移，任一成员可代答。
func (c *Client) LeaderStats(ctx context.Context) (*Response[LeaderStats], error) {
	r := &request{
		method: http.MethodGet,
		path:   "/v2/stats/leader",
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[LeaderStats], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeJSON[LeaderStats](resp, http.StatusOK)
	})
}

// SelfStats 并发查询每个成员的自身统计。
// 统计是成员各自的状态，不做故障转移，逐成员返回结果。
func (c *Client) SelfStats(ctx context.Context) []MemberResult[SelfStats] {
	return fanOut(ctx, c, func(ctx context.Context, base *url.URL) (*Response[SelfStats], error) {
		return statsGet[SelfStats](ctx, c, base, "/v2/stats/self")
	})
}

// StoreStats 并发查询每个成员的键空间操作统计。
func (c *Client) StoreStats(ctx context.Context) []MemberResult[StoreStats] {
	return fanOut(ctx, c, func(ctx context.Context, base *url.URL) (*Response[StoreStats], error) {
		return statsGet[StoreStats](ctx, c, base, "/v2/stats/store")
	})
}

// statsGet 对单个成员执行统计查询。
func statsGet[T any](ctx context.Context, c *Client, base *url.URL, path string) (*Response[T], error) {
	ctx, cancel := c.reqCtx(ctx)
	defer cancel()
	resp, err := c.send(ctx, base, &request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return decodeJSON[T](resp, http.StatusOK)
}
