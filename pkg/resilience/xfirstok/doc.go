// Package xfirstok 提供"首个成功即返回"的多端点故障转移原语。
//
// 给定一组有序端点和一个针对单端点的操作闭包，First 按顺序逐个尝试，
// 任一端点成功则立即短路返回；全部失败时返回按遭遇顺序排列的错误列表。
//
// 核心特性：
//   - 严格顺序执行，不并发、不竞速，避免写操作产生重复副作用
//   - 每个端点在单次调用中至多被尝试一次
//   - 成功短路：剩余端点不会被触达
//   - 失败聚合：错误列表的长度与顺序和端点列表一致
//
// xfirstok 不关心"失败"的定义——由操作闭包自行决定什么算失败
// （连接错误、非预期状态码、响应解码失败等统一走错误通道）。
package xfirstok
