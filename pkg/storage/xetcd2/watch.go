package xetcd2

import (
	"context"
	"errors"
	"time"
)

// WatchOptions Watch 的选项。
type WatchOptions struct {
	// Index 从指定的 etcd 索引开始观察（waitIndex）。
	// nil 时只等待下一次变更。
	Index *uint64

	// Recursive 观察目录及其全部子节点。
	Recursive bool

	// Timeout 等待超时，0 时回落到 Config.WatchTimeout，仍为 0 则无限等待。
	// 超时后返回 ErrWatchTimeout。
	Timeout time.Duration
}

// Watch 观察键的下一次变更（一次性长轮询）。
// 变更包括写入、删除与 TTL 到期（Action 为 expire）。
// 返回的响应与 Get 同构，Action 字段标明变更类型。
//
// 错误:
//   - 超时时返回 ErrWatchTimeout，可用 IsWatchTimeout 判断
//   - Index 早于服务端事件窗口时为错误码 401，可用 IsIndexCleared 判断。
//     此时应重新读取键的 modifiedIndex 并以其值加一重启 Watch
func (c *Client) Watch(ctx context.Context, key string, opts WatchOptions) (*Response[KeyValueInfo], error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = c.cfg.WatchTimeout
	}

	watchCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		watchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := c.rawGet(watchCtx, key, getOptions{
		recursive: opts.Recursive,
		wait:      true,
		waitIndex: opts.Index,
	})
	if err != nil {
		// 仅当超时由本地计时器触发时折叠为 ErrWatchTimeout，
		// 调用方自带的 deadline 原样透出。
		if timeout > 0 && ctx.Err() == nil && errors.Is(watchCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrWatchTimeout
		}
		return nil, err
	}
	return resp, nil
}
