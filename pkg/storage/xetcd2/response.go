package xetcd2

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
)

// ClusterInfo 响应头携带的集群元信息。
// v2 API 的每个响应都带有这些头；缺失的头对应零值。
type ClusterInfo struct {
	// ClusterID 集群唯一标识（X-Etcd-Cluster-Id）。
	ClusterID string

	// EtcdIndex 当前 etcd 索引（X-Etcd-Index）。
	// Watch 流以 EtcdIndex+1 作为下一个 waitIndex 的候选。
	EtcdIndex uint64

	// RaftIndex 当前 raft 索引（X-Raft-Index）。
	RaftIndex uint64

	// RaftTerm 当前 raft 任期（X-Raft-Term）。
	RaftTerm uint64
}

// clusterInfoFrom 从响应头提取集群元信息。无法解析的头按零值处理。
func clusterInfoFrom(h http.Header) ClusterInfo {
	return ClusterInfo{
		ClusterID: h.Get("X-Etcd-Cluster-Id"),
		EtcdIndex: headerUint(h, "X-Etcd-Index"),
		RaftIndex: headerUint(h, "X-Raft-Index"),
		RaftTerm:  headerUint(h, "X-Raft-Term"),
	}
}

func headerUint(h http.Header, name string) uint64 {
	v := h.Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Response 单个成功操作的完整响应：解码后的数据加集群元信息。
type Response[T any] struct {
	// Data 解码后的响应体。
	Data T

	// Cluster 响应头中的集群元信息。
	Cluster ClusterInfo
}

// decodeJSON 两段式响应分类。
// 状态码在 ok 集合内时按 T 解码响应体；否则先尝试按 *APIError 解码，
// 解码失败或形状不符时归为 *DecodeError。任一阶段只读取一次响应体。
func decodeJSON[T any](resp *http.Response, ok ...int) (*Response[T], error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read response body: %w", err)}
	}

	info := clusterInfoFrom(resp.Header)

	if slices.Contains(ok, resp.StatusCode) {
		var data T
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return &Response[T]{Data: data, Cluster: info}, nil
	}

	return nil, decodeAPIError(body, resp.StatusCode)
}

// decodeEmpty 用于成功时无响应体的操作（如成员删除）。
// 状态码在 ok 集合内时返回空数据响应；否则走结构化错误解码。
func decodeEmpty(resp *http.Response, ok ...int) (*Response[struct{}], error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if slices.Contains(ok, resp.StatusCode) {
		return &Response[struct{}]{Cluster: clusterInfoFrom(resp.Header)}, nil
	}

	return nil, decodeAPIError(body, resp.StatusCode)
}

// decodeStatus 用于没有结构化错误体的操作（auth 的用户/角色管理）。
// 状态码不在 ok 集合内时直接返回 *UnexpectedStatusError，不碰响应体。
func decodeStatus[T any](resp *http.Response, ok ...int) (*Response[T], error) {
	defer resp.Body.Close()

	if !slices.Contains(ok, resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read response body: %w", err)}
	}

	var data T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &DecodeError{Err: err}
		}
	}
	return &Response[T]{Data: data, Cluster: clusterInfoFrom(resp.Header)}, nil
}

// decodeAPIError 将非预期状态码的响应体解码为结构化错误。
// 响应体不是合法 JSON 或缺少错误码时归为 *DecodeError。
func decodeAPIError(body []byte, status int) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &DecodeError{Err: err}
	}
	if apiErr.Code == 0 {
		return &DecodeError{Err: fmt.Errorf("status %d body is not an api error", status)}
	}
	return &apiErr
}
