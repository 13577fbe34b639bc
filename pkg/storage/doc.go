// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xetcd2: etcd v2 HTTP API 客户端，支持多成员故障转移
//
// 设计原则：
//   - 显式配置加校验（DefaultConfig/Validate），拒绝隐式默认
//   - 错误可判别：哨兵错误与错误码辅助函数并用
//   - 阻塞操作一律接受 context.Context
package storage
