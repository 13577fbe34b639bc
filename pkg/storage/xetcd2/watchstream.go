package xetcd2

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
)

// Watch 流重连的退避参数。
const (
	watchRetryBaseDelay = 100 * time.Millisecond
	watchRetryMaxDelay  = 5 * time.Second
)

// WatchEvent 流式 Watch 的单个事件。
// Err 非 nil 表示流遇到不可恢复错误，随后事件通道关闭。
type WatchEvent struct {
	// Response 本次变更的响应，与一次性 Watch 的返回值同构。
	Response *Response[KeyValueInfo]

	// Err 不可恢复的错误。
	Err error
}

// WatchStream 持续观察一个键的变更流。
// 由 Client.WatchStream 创建，通过 Events 消费，Close 终止。
type WatchStream struct {
	events chan WatchEvent
	cancel context.CancelFunc
	done   chan struct{}
}

// Events 返回事件通道。流终止（Close、context 取消或不可恢复错误）后通道关闭。
func (s *WatchStream) Events() <-chan WatchEvent {
	return s.events
}

// Close 终止流并等待后台轮询退出。可重复调用。
func (s *WatchStream) Close() {
	s.cancel()
	<-s.done
}

// WatchStream 创建持续的变更流。
//
// 内部以长轮询循环实现：每收到一次变更即以 modifiedIndex+1 作为
// 新的 waitIndex 继续等待。集群整体不可达时按指数退避自动重连；
// waitIndex 被清出服务端事件窗口（错误码 401）时自动重读当前状态，
// 将该快照作为一个事件送出并从最新索引恢复观察。
//
// opts.Timeout 约束的是单次长轮询，超时后静默重新轮询，不产生事件。
//
// 参数:
//   - key: 观察的键或目录
//   - opts: 观察选项，Index 为起始 waitIndex
//
// 返回:
//   - *WatchStream: 事件流，用毕必须 Close 以回收后台 goroutine
func (c *Client) WatchStream(ctx context.Context, key string, opts WatchOptions) *WatchStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &WatchStream{
		events: make(chan WatchEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.watchLoop(ctx, key, opts, s)
	return s
}

func (c *Client) watchLoop(ctx context.Context, key string, opts WatchOptions, s *WatchStream) {
	defer close(s.done)
	defer close(s.events)

	waitIndex := opts.Index

	for ctx.Err() == nil {
		next := waitIndex
		resp, err := retry.NewWithData[*Response[KeyValueInfo]](
			retry.Context(ctx),
			retry.UntilSucceeded(),
			retry.Delay(watchRetryBaseDelay),
			retry.MaxDelay(watchRetryMaxDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				// 401 需要重读恢复，交由外层处理；超时与集群不可达可直接重试
				if IsIndexCleared(err) {
					return false
				}
				if IsWatchTimeout(err) {
					return true
				}
				var clusterErr *ClusterError
				return errors.As(err, &clusterErr)
			}),
		).Do(func() (*Response[KeyValueInfo], error) {
			return c.Watch(ctx, key, WatchOptions{
				Index:     next,
				Recursive: opts.Recursive,
				Timeout:   opts.Timeout,
			})
		})

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if IsIndexCleared(err) {
				// waitIndex 过旧：重读当前状态，把快照作为事件送出并从最新索引恢复
				cur, gerr := c.Get(ctx, key, GetOptions{Recursive: opts.Recursive, Quorum: true})
				if gerr != nil {
					s.emit(ctx, WatchEvent{Err: gerr})
					return
				}
				idx := cur.Cluster.EtcdIndex + 1
				waitIndex = &idx
				if !s.emit(ctx, WatchEvent{Response: cur}) {
					return
				}
				continue
			}
			s.emit(ctx, WatchEvent{Err: err})
			return
		}

		if !s.emit(ctx, WatchEvent{Response: resp}) {
			return
		}
		if resp.Data.Node.ModifiedIndex != nil {
			idx := *resp.Data.Node.ModifiedIndex + 1
			waitIndex = &idx
		} else {
			idx := resp.Cluster.EtcdIndex + 1
			waitIndex = &idx
		}
	}
}

// emit 送出事件，返回 false 表示流已被取消。
func (s *WatchStream) emit(ctx context.Context, ev WatchEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
