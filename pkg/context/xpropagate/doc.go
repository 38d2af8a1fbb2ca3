// Package xpropagate 在 HTTP 与 gRPC 边界上传播 xreqctx.RequestContext。
//
// # 入站
//
// [HTTPMiddleware]、[GRPCUnaryServerInterceptor]、[GRPCStreamServerInterceptor]
// 为每个请求打开独立的 xreqctx 作用域，将 Header/Metadata 转换为 CGI 风格的请求环境
// （X-User-Id → HTTP_X_USER_ID），再通过 xreqctx.FromEnviron 构造并发布当前上下文。
// 响应中回写 X-Openstack-Request-Id。
//
// 重复的 Header 以 "," 连接；名称含下划线的 Header 被丢弃，
// 否则 X_User_Id 会与上游代理设置的 X-User-Id 映射到同一个 Key。
//
// 上游传入的请求 ID 默认不被采用，每个请求生成新 ID；
// 只有在上游可信（如内部网关之后）时才使用 [WithTrustRequestID]。
//
// # 出站
//
// [InjectToRequest]、[InjectToOutgoingContext]、[GRPCUnaryClientInterceptor]
// 将当前上下文写入出站 Header/Metadata，采用"以 context 为准"语义：
// 有值则 Set，无值则删除，防止请求对象复用时旧身份信息泄漏到下游。
// X-Auth-Token 默认不转发，下游属于同一信任域时使用 [WithForwardToken]。
//
// # 可观测性
//
// 每个入站请求记录一次 xreqctx.contexts.created 计数（属性 transport、is_admin），
// 并将上下文属性写入活动 span。
package xpropagate
