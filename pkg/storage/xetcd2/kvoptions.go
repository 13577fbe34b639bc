package xetcd2

import (
	"net/url"
	"strconv"
)

// GetOptions 读取操作的选项。零值即普通单键读取。
type GetOptions struct {
	// Recursive 目标为目录时递归返回全部子节点。
	Recursive bool

	// Sort 非 nil 时显式控制目录子节点排序（sorted 查询参数）。
	// nil 时不发送该参数，由服务端使用默认行为。
	Sort *bool

	// Quorum 读取前与多数派同步，换取线性一致性读。
	Quorum bool
}

// Conditions 条件写删（CompareAndSwap/CompareAndDelete）的比较条件。
// Value 与 ModifiedIndex 至少给出其一，两者同时给出时必须同时满足。
type Conditions struct {
	// Value 期望的当前值（prevValue）。
	Value *string

	// ModifiedIndex 期望的当前 modifiedIndex（prevIndex）。
	ModifiedIndex *uint64
}

// isEmpty 报告是否未给出任何条件。
// 空条件在构造请求前被拒绝，不触达任何端点。
func (c *Conditions) isEmpty() bool {
	return c == nil || (c.Value == nil && c.ModifiedIndex == nil)
}

// setOptions 写操作的内部选项，由各公开方法填充。
type setOptions struct {
	value      *string
	ttl        *uint64
	dir        *bool
	prevExist  *bool
	conditions *Conditions
	// inOrder 为 true 时使用 POST（按序创建），否则 PUT。
	inOrder bool
}

// form 将写选项编码为表单字段。每个存在的选项恰好占一个字段。
func (o *setOptions) form() url.Values {
	form := url.Values{}
	if o.value != nil {
		form.Set("value", *o.value)
	}
	if o.ttl != nil {
		form.Set("ttl", strconv.FormatUint(*o.ttl, 10))
	}
	if o.dir != nil {
		form.Set("dir", strconv.FormatBool(*o.dir))
	}
	if o.prevExist != nil {
		form.Set("prevExist", strconv.FormatBool(*o.prevExist))
	}
	if o.conditions != nil {
		if o.conditions.ModifiedIndex != nil {
			form.Set("prevIndex", strconv.FormatUint(*o.conditions.ModifiedIndex, 10))
		}
		if o.conditions.Value != nil {
			form.Set("prevValue", *o.conditions.Value)
		}
	}
	return form
}

// deleteOptions 删除操作的内部选项。
type deleteOptions struct {
	recursive  *bool
	dir        *bool
	conditions *Conditions
}

// query 将删除选项编码为查询参数。
func (o *deleteOptions) query() url.Values {
	q := url.Values{}
	if o.recursive != nil {
		q.Set("recursive", strconv.FormatBool(*o.recursive))
	}
	if o.dir != nil {
		q.Set("dir", strconv.FormatBool(*o.dir))
	}
	if o.conditions != nil {
		if o.conditions.ModifiedIndex != nil {
			q.Set("prevIndex", strconv.FormatUint(*o.conditions.ModifiedIndex, 10))
		}
		if o.conditions.Value != nil {
			q.Set("prevValue", *o.conditions.Value)
		}
	}
	return q
}

// getOptions 读取与 Watch 共用的内部选项。
type getOptions struct {
	recursive bool
	sort      *bool
	quorum    bool
	wait      bool
	waitIndex *uint64
}

// query 将读取选项编码为查询参数。
// recursive 恒定发送，其余仅在存在时发送。
func (o *getOptions) query() url.Values {
	q := url.Values{}
	q.Set("recursive", strconv.FormatBool(o.recursive))
	if o.sort != nil {
		q.Set("sorted", strconv.FormatBool(*o.sort))
	}
	if o.quorum {
		q.Set("quorum", "true")
	}
	if o.wait {
		q.Set("wait", "true")
	}
	if o.waitIndex != nil {
		q.Set("waitIndex", strconv.FormatUint(*o.waitIndex, 10))
	}
	return q
}

// 指针辅助函数，用于填充 Options 结构的可选字段。

// Bool 返回 b 的指针。
func Bool(b bool) *bool { return &b }

// String 返回 s 的指针。
func String(s string) *string { return &s }

// Uint64 返回 n 的指针。
func Uint64(n uint64) *uint64 { return &n }

// ttlPtr 将 0=无 TTL 的便捷约定转换为指针形式。
func ttlPtr(ttl uint64) *uint64 {
	if ttl == 0 {
		return nil
	}
	return &ttl
}
