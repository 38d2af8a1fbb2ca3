// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转、固定属性）
//   - EnrichHandler 自动注入作用域中当前请求上下文的字段（默认启用）
//   - 动态级别调整，配置热更新时调用 SetLevel 即可
//   - lumberjack 文件轮转，Build 返回的 cleanup 负责关闭
//
// # 创建 Logger
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/app.log", xlog.WithMaxSize(100)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// Builder 为 first-error-wins：第一个配置错误在 Build 时返回。
//
// # 请求上下文注入
//
// 请求入口通过 xreqctx.WithScope 打开作用域并构造 RequestContext 后，
// 携带该 ctx 的每条日志都会带上 request_id、user_identity、roles 等字段，
// 缺失的字段不输出；auth_token 以 "***" 输出。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// [ParseLevel] 从字符串解析；Level 实现 encoding.TextUnmarshaler，配置文件可直接解码。
package xlog
