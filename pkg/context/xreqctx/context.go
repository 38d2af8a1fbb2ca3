package xreqctx

import (
	"context"
	"slices"

	"github.com/omeyang/xreqctx/pkg/util/xid"
)

// RequestContext 请求上下文：一次请求的身份、授权和追踪信息。
//
// 所有字段只读，零值不可用，请通过 New/FromMap/FromEnviron/FromJSON 构造。
// 可在多个 goroutine 间共享读取。
type RequestContext struct {
	v values
}

// New 构造 RequestContext。
//
// 除 roles（缺省为空列表）和 request_id（缺省或为空时自动生成）外，字段按原样保存。
// 构造完成后，若 overwrite 为 true 或 ctx 的作用域为空，新实例会被发布为当前上下文。
// ctx 为 nil 或未打开作用域时不发布。
func New(ctx context.Context, opts ...Option) *RequestContext {
	o := newOptions()
	o.apply(opts)
	return o.build(ctx)
}

// Derive 以 rc 的字段为基础、叠加 opts 构造新实例，request_id 默认沿用。
//
// rc 本身不变。发布规则与 New 相同。
func (rc *RequestContext) Derive(ctx context.Context, opts ...Option) *RequestContext {
	o := newOptions()
	if rc != nil {
		o.v = rc.v
		o.v.roles = slices.Clone(rc.v.roles)
	}
	o.apply(opts)
	return o.build(ctx)
}

func (o *options) build(ctx context.Context) *RequestContext {
	v := o.v
	if v.roles == nil {
		v.roles = []string{}
	}
	if v.requestID == "" {
		v.requestID = xid.NewRequestID()
	}
	rc := &RequestContext{v: v}

	if s := ScopeFrom(ctx); s != nil {
		if o.overwrite {
			s.Publish(rc)
		} else {
			s.publishIfEmpty(rc)
		}
	}
	return rc
}

// =============================================================================
// 身份信息
// =============================================================================

// AuthToken 认证 token，未设置返回空字符串
func (rc *RequestContext) AuthToken() string { return rc.v.authToken }

// User 用户 ID
func (rc *RequestContext) User() string { return rc.v.user }

// UserName 用户显示名
func (rc *RequestContext) UserName() string { return rc.v.userName }

// Tenant 项目 ID（历史名称）
func (rc *RequestContext) Tenant() string { return rc.v.tenant }

// ProjectID 项目 ID，等价于 Tenant
func (rc *RequestContext) ProjectID() string { return rc.v.tenant }

// ProjectName 项目显示名
func (rc *RequestContext) ProjectName() string { return rc.v.projectName }

// Domain 域 ID
func (rc *RequestContext) Domain() string { return rc.v.domain }

// DomainName 域显示名
func (rc *RequestContext) DomainName() string { return rc.v.domainName }

// UserDomain 用户所属域 ID
func (rc *RequestContext) UserDomain() string { return rc.v.userDomain }

// UserDomainName 用户所属域显示名
func (rc *RequestContext) UserDomainName() string { return rc.v.userDomainName }

// ProjectDomain 项目所属域 ID
func (rc *RequestContext) ProjectDomain() string { return rc.v.projectDomain }

// ProjectDomainName 项目所属域显示名
func (rc *RequestContext) ProjectDomainName() string { return rc.v.projectDomainName }

// =============================================================================
// 授权信息
// =============================================================================

// IsAdmin 是否为管理员上下文
func (rc *RequestContext) IsAdmin() bool { return rc.v.isAdmin }

// IsAdminProject token 是否将当前项目指定为管理项目。
//
// 默认 true 仅为兼容旧策略，调用方不得把"未显式指定"当作拒绝依据。
func (rc *RequestContext) IsAdminProject() bool { return rc.v.isAdminProject }

// Roles 返回角色列表的副本，永远非 nil
func (rc *RequestContext) Roles() []string { return slices.Clone(rc.v.roles) }

// HasRole 判断是否拥有指定角色（大小写敏感）
func (rc *RequestContext) HasRole(role string) bool { return slices.Contains(rc.v.roles, role) }

// =============================================================================
// 请求追踪
// =============================================================================

// RequestID 请求 ID，构造后永远非空
func (rc *RequestContext) RequestID() string { return rc.v.requestID }

// ResourceUUID 资源 UUID
func (rc *RequestContext) ResourceUUID() string { return rc.v.resourceUUID }

// ReadOnly 只读标记
func (rc *RequestContext) ReadOnly() bool { return rc.v.readOnly }

// ShowDeleted 是否展示已删除资源
func (rc *RequestContext) ShowDeleted() bool { return rc.v.showDeleted }
