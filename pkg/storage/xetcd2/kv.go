package xetcd2

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// keysPrefix v2 KV API 的路径前缀。
const keysPrefix = "/v2/keys"

// keyPath 将键名规范化为以 "/" 开头的 API 路径。
func keyPath(key string) string {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return keysPrefix + key
}

// Get 读取键或目录。
//
// 参数:
//   - key: 键名，如 "/foo/bar"
//   - opts: 读取选项，零值为普通单键读取
//
// 错误:
//   - 键不存在时为错误码 100，可用 IsKeyNotFound 判断
func (c *Client) Get(ctx context.Context, key string, opts GetOptions) (*Response[KeyValueInfo], error) {
	return c.rawGet(ctx, key, getOptions{
		recursive: opts.Recursive,
		sort:      opts.Sort,
		quorum:    opts.Quorum,
	})
}

// Set 无条件写入键值对，已有的值与 TTL 被替换。
// ttl 为过期秒数，0 表示不过期。
//
// 错误:
//   - 目标是目录时为错误码 102（IsNotFile 场景）
func (c *Client) Set(ctx context.Context, key, value string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		value: &value,
		ttl:   ttlPtr(ttl),
	})
}

// SetDir 将键设置为空目录。
// 已有的键值对会被替换，但已有的目录不会。
func (c *Client) SetDir(ctx context.Context, key string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		dir: Bool(true),
		ttl: ttlPtr(ttl),
	})
}

// Create 创建新的键值对。
//
// 错误:
//   - 键已存在时为错误码 105，可用 IsNodeExist 判断
func (c *Client) Create(ctx context.Context, key, value string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		value:     &value,
		ttl:       ttlPtr(ttl),
		prevExist: Bool(false),
	})
}

// CreateDir 创建新的空目录。
//
// 错误:
//   - 键已存在时为错误码 105
func (c *Client) CreateDir(ctx context.Context, key string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		dir:       Bool(true),
		ttl:       ttlPtr(ttl),
		prevExist: Bool(false),
	})
}

// CreateInOrder 在目录下按序创建键值对。
// 服务端以递增的创建索引生成键名（如 "00000000000000000001"），
// 同一目录下后创建的键名总是大于先创建的。
//
// 错误:
//   - key 已存在且不是目录时为错误码 104
func (c *Client) CreateInOrder(ctx context.Context, dir, value string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, dir, setOptions{
		value:   &value,
		ttl:     ttlPtr(ttl),
		inOrder: true,
	})
}

// Update 更新已存在的键值对。
//
// 错误:
//   - 键不存在时为错误码 100
func (c *Client) Update(ctx context.Context, key, value string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		value:     &value,
		ttl:       ttlPtr(ttl),
		prevExist: Bool(true),
	})
}

// UpdateDir 更新已存在的目录（通常用于刷新 TTL）。
// 若目标是键值对，其值会被清除并转换为目录。
func (c *Client) UpdateDir(ctx context.Context, key string, ttl uint64) (*Response[KeyValueInfo], error) {
	return c.rawSet(ctx, key, setOptions{
		dir:       Bool(true),
		ttl:       ttlPtr(ttl),
		prevExist: Bool(true),
	})
}

// CompareAndSwap 条件更新：仅当节点当前状态满足 conditions 时写入。
// conditions 必须至少给出 Value 或 ModifiedIndex 之一，
// 否则立即返回 ErrInvalidConditions，不触达任何端点。
//
// 错误:
//   - 条件不匹配时为错误码 101，可用 IsTestFailed 判断。
//     注意条件不匹配是集群的一致决定，所有端点都会拒绝
func (c *Client) CompareAndSwap(ctx context.Context, key, value string, ttl uint64, conditions *Conditions) (*Response[KeyValueInfo], error) {
	if conditions.isEmpty() {
		return nil, ErrInvalidConditions
	}
	return c.rawSet(ctx, key, setOptions{
		value:      &value,
		ttl:        ttlPtr(ttl),
		conditions: conditions,
	})
}

// CompareAndDelete 条件删除：仅当节点当前状态满足 conditions 时删除。
// conditions 必须至少给出 Value 或 ModifiedIndex 之一，
// 否则立即返回 ErrInvalidConditions，不触达任何端点。
func (c *Client) CompareAndDelete(ctx context.Context, key string, conditions *Conditions) (*Response[KeyValueInfo], error) {
	if conditions.isEmpty() {
		return nil, ErrInvalidConditions
	}
	return c.rawDelete(ctx, key, deleteOptions{
		conditions: conditions,
	})
}

// Delete 删除键值对。recursive 为 true 时可删除目录及其全部子节点。
//
// 错误:
//   - 目标是目录且 recursive 为 false 时为错误码 102
func (c *Client) Delete(ctx context.Context, key string, recursive bool) (*Response[KeyValueInfo], error) {
	return c.rawDelete(ctx, key, deleteOptions{
		recursive: Bool(recursive),
	})
}

// DeleteDir 删除空目录或键值对。
//
// 错误:
//   - 目录非空时为错误码 108
func (c *Client) DeleteDir(ctx context.Context, key string) (*Response[KeyValueInfo], error) {
	return c.rawDelete(ctx, key, deleteOptions{
		dir: Bool(true),
	})
}

// rawGet 所有读取（含 Watch 长轮询）的公共路径。
// wait 为 true 时不施加 RequestTimeout，超时由调用方的 context 控制。
func (c *Client) rawGet(ctx context.Context, key string, opts getOptions) (*Response[KeyValueInfo], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	r := &request{
		method: http.MethodGet,
		path:   keyPath(key),
		query:  opts.query(),
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[KeyValueInfo], error) {
		if !opts.wait {
			var cancel context.CancelFunc
			ctx, cancel = c.reqCtx(ctx)
			defer cancel()
		}
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeJSON[KeyValueInfo](resp, http.StatusOK)
	})
}

// rawSet 所有写入的公共路径。按序创建使用 POST，其余使用 PUT。
// 服务端以 200（覆盖）或 201（新建）表示成功。
func (c *Client) rawSet(ctx context.Context, key string, opts setOptions) (*Response[KeyValueInfo], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	method := http.MethodPut
	if opts.inOrder {
		method = http.MethodPost
	}
	r := &request{
		method: method,
		path:   keyPath(key),
		form:   opts.form(),
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[KeyValueInfo], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeJSON[KeyValueInfo](resp, http.StatusOK, http.StatusCreated)
	})
}

// rawDelete 所有删除的公共路径。删除选项经查询参数传递。
func (c *Client) rawDelete(ctx context.Context, key string, opts deleteOptions) (*Response[KeyValueInfo], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	r := &request{
		method: http.MethodDelete,
		path:   keyPath(key),
		query:  opts.query(),
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[KeyValueInfo], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeJSON[KeyValueInfo](resp, http.StatusOK)
	})
}
