// Package xreqctx 提供请求级身份与元数据载体 RequestContext。
//
// RequestContext 汇集一次请求的认证、授权和追踪信息，供调用链上的代码读取，
// 并导出为策略引擎和日志系统使用的普通映射。
//
// # 核心功能
//
// 身份信息（ID 与显示名成对出现）：
//   - user / user_name
//   - tenant / project_name      : tenant 是 project_id 的历史别名
//   - domain / domain_name
//   - user_domain / user_domain_name
//   - project_domain / project_domain_name
//
// 授权信息：
//   - is_admin         : 默认 false
//   - is_admin_project : 默认 true（向后兼容的默认值，不是安全决策，缺省不代表拒绝）
//   - roles            : 有序角色列表，永远非 nil
//
// 请求追踪：
//   - request_id    : 未提供时自动生成 "req-<uuid>"
//   - resource_uuid / read_only / show_deleted
//
// # 构造方式
//
//	rc := xreqctx.New(ctx, xreqctx.WithUser("u1"), xreqctx.WithTenant("p1"))
//	rc := xreqctx.FromMap(ctx, values)             // 对应 ToMap 的逆过程
//	rc := xreqctx.FromEnviron(ctx, environ)        // 从 CGI 风格的请求环境解析
//
// 所有构造函数都是全函数：输入均为可选，不做校验，不返回错误。
// 字段优先级统一为：显式 Option > 来源映射中的值 > 文档默认值。
//
// # 当前上下文（Scope）
//
// Go 没有 goroutine 本地存储，"执行作用域"以显式句柄的形式放在 context.Context 中：
//
//	ctx, _ = xreqctx.WithScope(ctx)         // 请求入口：打开作用域
//	xreqctx.New(ctx, ...)                   // 构造时按规则发布到作用域
//	rc := xreqctx.Current(ctx)              // 任意下游代码读取
//
// 发布规则：overwrite 为 true（默认）或作用域为空时发布。
// overwrite=false 只在已有上下文时抑制发布，空作用域照常发布（先写者胜）。
// 每个作用域是独立的槽位，不同请求之间互不可见。
//
// 优先显式传递 *RequestContext；Scope 只用于无法改造为显式传参的代码。
//
// # 不可变性
//
// RequestContext 只暴露 getter，构造后不可修改。需要"修改"时使用 Derive
// 生成新实例。Roles() 返回副本，导出的映射每次新建，调用方可以自由修改返回值。
//
// # 空值约定
//
// 可选字符串以空字符串表示"缺失"（Go 零值）。导出映射中缺失的 ID 字段为 nil，
// 仅 user_identity 中缺失字段显示为 "-"。
//
// # 非目标
//
// 本包不做授权决策，不校验 token 真伪，不定义入站元数据格式（仅维护键发现表）。
package xreqctx
