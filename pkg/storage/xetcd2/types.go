package xetcd2

// Action 服务端报告的操作类型，出现在每个成功的 KV 响应中。
type Action string

// 操作类型常量，字面值与 etcd v2 的 JSON 响应一致。
const (
	// ActionCompareAndDelete 条件删除。
	ActionCompareAndDelete Action = "compareAndDelete"

	// ActionCompareAndSwap 条件更新。
	ActionCompareAndSwap Action = "compareAndSwap"

	// ActionCreate 创建（含按序创建）。
	ActionCreate Action = "create"

	// ActionDelete 删除。
	ActionDelete Action = "delete"

	// ActionExpire TTL 到期。仅出现在 Watch 事件中。
	ActionExpire Action = "expire"

	// ActionGet 读取。
	ActionGet Action = "get"

	// ActionSet 无条件写入。
	ActionSet Action = "set"

	// ActionUpdate 更新已有节点。
	ActionUpdate Action = "update"
)

// Node 键空间中的一个节点，可能是键值对或目录。
// 除 Key 外所有字段在响应中均可能缺失，故使用指针或零值可辨的类型。
type Node struct {
	// CreatedIndex 节点创建时的 etcd 索引。
	CreatedIndex *uint64 `json:"createdIndex,omitempty"`

	// Dir 是否为目录。缺失时视为 false。
	Dir bool `json:"dir,omitempty"`

	// Expiration TTL 到期时间，RFC 3339 格式。无 TTL 时缺失。
	Expiration *string `json:"expiration,omitempty"`

	// Key 节点的完整路径，以 "/" 开头。
	Key string `json:"key,omitempty"`

	// ModifiedIndex 最近一次修改该节点时的 etcd 索引。
	// CompareAndSwap 的 prevIndex 与 Watch 的 waitIndex 均以此为基准。
	ModifiedIndex *uint64 `json:"modifiedIndex,omitempty"`

	// Nodes 子节点。仅目录在递归读取时填充。
	Nodes []Node `json:"nodes,omitempty"`

	// TTL 剩余存活秒数。无 TTL 时缺失。
	TTL *int64 `json:"ttl,omitempty"`

	// Value 节点的值。目录没有值。
	Value *string `json:"value,omitempty"`
}

// IsDir 报告节点是否为目录。
func (n *Node) IsDir() bool {
	return n.Dir
}

// KeyValueInfo 成功的 KV 操作响应体。
type KeyValueInfo struct {
	// Action 服务端执行的操作类型。
	Action Action `json:"action"`

	// Node 操作后的节点状态。
	Node Node `json:"node"`

	// PrevNode 操作前的节点状态。仅覆盖已有节点的写操作填充。
	PrevNode *Node `json:"prevNode,omitempty"`
}
