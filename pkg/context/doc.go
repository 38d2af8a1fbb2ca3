// Package context 提供请求身份上下文相关的子包。
//
// 子包列表：
//   - xreqctx: RequestContext 请求身份/元数据载体与执行作用域内的"当前上下文"
//   - xpropagate: HTTP/gRPC 传播，入站构造上下文、出站写回头部/元数据
//
// 设计原则：
//   - 当前上下文挂在 context.Context 的作用域上传递，不使用全局变量
//   - RequestContext 构造后不可变，变更通过 Derive 得到新实例
package context
