package xetcd2

import (
	"errors"
	"fmt"
	"strings"
)

// 错误定义。
var (
	// ErrNilConfig 配置为空。
	ErrNilConfig = errors.New("xetcd2: config is nil")

	// ErrNoEndpoints 未配置端点。
	ErrNoEndpoints = errors.New("xetcd2: no endpoints configured")

	// ErrInvalidEndpoint 端点格式无效。
	// 有效格式为完整的基地址 URL，例如 "http://localhost:2379"。
	ErrInvalidEndpoint = errors.New("xetcd2: invalid endpoint, expected http(s)://host:port")

	// ErrEmptyKey 键名为空。
	ErrEmptyKey = errors.New("xetcd2: key is empty")

	// ErrInvalidConditions 条件写删未给出任何条件字段。
	// CompareAndSwap/CompareAndDelete 至少需要 prevValue 或 prevIndex 之一，
	// 校验在构造请求前完成，不会触达任何端点。
	ErrInvalidConditions = errors.New("xetcd2: conditions must specify value or modified index")

	// ErrWatchTimeout Watch 在配置的超时内未观察到变更。
	ErrWatchTimeout = errors.New("xetcd2: watch timed out")
)

// etcd v2 API 错误码。
// 完整列表见 etcd v2 文档，这里仅列出客户端需要区分的子集。
const (
	// CodeKeyNotFound 键不存在。
	CodeKeyNotFound = 100

	// CodeTestFailed CAS/CAD 条件不匹配。
	CodeTestFailed = 101

	// CodeNotFile 目标是目录而非键值对。
	CodeNotFile = 102

	// CodeNotDir 目标是键值对而非目录。
	CodeNotDir = 104

	// CodeNodeExist 节点已存在（prevExist=false 时冲突）。
	CodeNodeExist = 105

	// CodeRootReadOnly 根节点只读。
	CodeRootReadOnly = 107

	// CodeDirNotEmpty 目录非空，无法以非递归方式删除。
	CodeDirNotEmpty = 108

	// CodeEventIndexCleared waitIndex 早于服务端保留的事件窗口。
	// 恢复方式：重新读取键的当前 modifiedIndex，从该索引重启 Watch。
	CodeEventIndexCleared = 401
)

// APIError 服务端返回的结构化错误。
type APIError struct {
	// Code 错误码，见 Code* 常量。
	Code int `json:"errorCode"`

	// Message 人类可读的错误描述。
	Message string `json:"message"`

	// Cause 受影响的键或触发原因。
	Cause string `json:"cause,omitempty"`

	// Index 产生错误时的 etcd 索引。
	Index uint64 `json:"index,omitempty"`
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	return fmt.Sprintf("xetcd2: api error %d: %s (cause: %s)", e.Code, e.Message, e.Cause)
}

// DecodeError 响应体既无法按成功形状、也无法按结构化错误形状解码。
// 与传输错误严格区分：请求已完成，但响应内容不可理解。
type DecodeError struct {
	// Err 底层 JSON 解码错误。
	Err error
}

// Error 实现 error 接口。
func (e *DecodeError) Error() string {
	return fmt.Sprintf("xetcd2: decode response body: %v", e.Err)
}

// Unwrap 返回底层解码错误。
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError 状态码不在操作的预期集合内，
// 且该操作没有结构化错误体可供解码（如 auth 的用户/角色管理接口）。
type UnexpectedStatusError struct {
	// StatusCode HTTP 状态码。
	StatusCode int
}

// Error 实现 error 接口。
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("xetcd2: unexpected status code %d", e.StatusCode)
}

// ClusterError 所有端点均失败时的聚合错误。
// Errors 按端点的尝试顺序排列，长度与已尝试的端点数一致。
type ClusterError struct {
	// Errors 每个端点的失败原因，按遭遇顺序排列。
	Errors []error
}

// Error 实现 error 接口。
func (e *ClusterError) Error() string {
	if len(e.Errors) == 0 {
		return "xetcd2: no endpoints attempted"
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("xetcd2: all %d endpoints failed: [%s]", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap 返回每个端点的错误，支持 errors.Is/As 逐个匹配。
func (e *ClusterError) Unwrap() []error {
	return e.Errors
}

// IsKeyNotFound 检查错误是否为"键不存在"。
func IsKeyNotFound(err error) bool {
	return hasAPICode(err, CodeKeyNotFound)
}

// IsTestFailed 检查错误是否为 CAS/CAD 条件不匹配。
func IsTestFailed(err error) bool {
	return hasAPICode(err, CodeTestFailed)
}

// IsNodeExist 检查错误是否为"节点已存在"。
func IsNodeExist(err error) bool {
	return hasAPICode(err, CodeNodeExist)
}

// IsIndexCleared 检查错误是否为"waitIndex 已被清出事件窗口"。
// 收到此错误后应重新读取键的 modifiedIndex 并从该处重启 Watch。
func IsIndexCleared(err error) bool {
	return hasAPICode(err, CodeEventIndexCleared)
}

// IsWatchTimeout 检查错误是否为 Watch 超时。
func IsWatchTimeout(err error) bool {
	return errors.Is(err, ErrWatchTimeout)
}

// IsInvalidConditions 检查错误是否为条件写删缺少条件字段。
func IsInvalidConditions(err error) bool {
	return errors.Is(err, ErrInvalidConditions)
}

// hasAPICode 检查错误链中是否存在指定错误码的 APIError。
// 聚合错误中任一端点携带该错误码即命中。不能只用 errors.As：
// 它在遇到链中第一个 APIError 后即停止，各端点错误码不一致时会漏判。
func hasAPICode(err error, code int) bool {
	var clusterErr *ClusterError
	if errors.As(err, &clusterErr) {
		for _, e := range clusterErr.Errors {
			if hasAPICode(e, code) {
				return true
			}
		}
		return false
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
