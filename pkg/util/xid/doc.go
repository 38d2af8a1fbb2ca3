// Package xid 提供请求 ID 生成能力，基于 google/uuid 实现。
//
// # ID 格式
//
// 请求 ID 由固定前缀 "req-" 和一个随机 UUID（RFC 4122 v4，标准 36 字符文本）组成：
//
//	req-4b6f2c1e-9a0d-4a8e-b3f1-2d73c5e8a901
//
// 该格式与上游中间件约定一致，下游日志与审计系统依赖前缀做来源识别，不可修改。
//
// # 快速开始
//
//	id := xid.NewRequestID()
//
//	if xid.IsRequestID(inbound) {
//	    // 上游传入的 ID 格式合法
//	}
//
// # 并发安全
//
// NewRequestID 无共享可变状态，熵来自 crypto/rand（由 uuid 包封装），
// 可在任意数量的 goroutine 中并发调用。
package xid
