package xreqctx

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span 属性 Key
const (
	AttrRequestID       = attribute.Key("xreqctx.request_id")
	AttrUserID          = attribute.Key("xreqctx.user_id")
	AttrProjectID       = attribute.Key("xreqctx.project_id")
	AttrDomainID        = attribute.Key("xreqctx.domain_id")
	AttrUserDomainID    = attribute.Key("xreqctx.user_domain_id")
	AttrProjectDomainID = attribute.Key("xreqctx.project_domain_id")
	AttrRoles           = attribute.Key("xreqctx.roles")
	AttrIsAdmin         = attribute.Key("xreqctx.is_admin")
	AttrIsAdminProject  = attribute.Key("xreqctx.is_admin_project")
)

// SpanAttributes 返回 rc 的追踪属性。缺失的 ID 字段跳过，auth_token 永不输出。
func SpanAttributes(rc *RequestContext) []attribute.KeyValue {
	if rc == nil {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, 9)
	attrs = append(attrs, AttrRequestID.String(rc.v.requestID))
	for _, kv := range [...]struct {
		key attribute.Key
		val string
	}{
		{AttrUserID, rc.v.user},
		{AttrProjectID, rc.v.tenant},
		{AttrDomainID, rc.v.domain},
		{AttrUserDomainID, rc.v.userDomain},
		{AttrProjectDomainID, rc.v.projectDomain},
	} {
		if kv.val != "" {
			attrs = append(attrs, kv.key.String(kv.val))
		}
	}
	attrs = append(attrs,
		AttrRoles.StringSlice(rc.Roles()),
		AttrIsAdmin.Bool(rc.v.isAdmin),
		AttrIsAdminProject.Bool(rc.v.isAdminProject),
	)
	return attrs
}

// AnnotateSpan 将 ctx 作用域中当前上下文的属性写入 ctx 的活动 span。
// span 未采样或没有当前上下文时不做任何事。
func AnnotateSpan(ctx context.Context) {
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if rc := Current(ctx); rc != nil {
		span.SetAttributes(SpanAttributes(rc)...)
	}
}
