// Package xetcd2 提供 etcd v2 HTTP API 客户端。
//
// 与基于 gRPC 的 v3 客户端不同，v2 API 通过 HTTP + JSON 访问。
// xetcd2 面向多成员集群：客户端持有一组有序的不可变端点，
// 每次操作按顺序逐个端点尝试，首个成功即返回（参见 xfirstok）。
//
// 提供的能力：
//   - KV 操作（Get/Set/Create/Update/Delete 及目录变体）
//   - 条件写删（CompareAndSwap/CompareAndDelete）
//   - Watch 长轮询（单次与流式两种形态）
//   - 集群成员管理（/v2/members）
//   - 认证与授权管理（/v2/auth）
//   - 统计、健康检查与版本查询
//
// # 端点与故障转移
//
// 端点列表在客户端创建时解析并固定，生命周期内不变、不重排。
// 单次调用中每个端点至多被尝试一次；全部失败时返回 *ClusterError，
// 其中按遭遇顺序保留每个端点的错误，便于区分"集群部分不可用"
// 与"操作被一致拒绝"（如 CAS 条件不匹配，所有成员都会拒绝）。
//
// # 错误处理
//
// 服务端结构化错误解码为 *APIError（含错误码），可用 IsKeyNotFound、
// IsTestFailed、IsIndexCleared 等辅助函数判断；响应体无法解码时
// 返回 *DecodeError；状态码不在预期集合且无结构化错误体时返回
// *UnexpectedStatusError。
package xetcd2
