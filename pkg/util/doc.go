// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 请求 ID 生成与解析
package util
