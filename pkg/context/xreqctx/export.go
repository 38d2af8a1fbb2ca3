package xreqctx

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// =============================================================================
// 映射 Key 常量
// =============================================================================

// ToMap / LoggingValues 的 Key，与下游日志和策略系统的约定一致，不可修改
const (
	KeyAuthToken         = "auth_token"
	KeyUser              = "user"
	KeyTenant            = "tenant"
	KeyDomain            = "domain"
	KeyUserDomain        = "user_domain"
	KeyProjectDomain     = "project_domain"
	KeyIsAdmin           = "is_admin"
	KeyReadOnly          = "read_only"
	KeyShowDeleted       = "show_deleted"
	KeyRequestID         = "request_id"
	KeyResourceUUID      = "resource_uuid"
	KeyRoles             = "roles"
	KeyUserIdentity      = "user_identity"
	KeyIsAdminProject    = "is_admin_project"
	KeyUserName          = "user_name"
	KeyProjectName       = "project_name"
	KeyDomainName        = "domain_name"
	KeyUserDomainName    = "user_domain_name"
	KeyProjectDomainName = "project_domain_name"
)

// ToPolicyValues 的 Key
const (
	PolicyKeyUserID          = "user_id"
	PolicyKeyUserDomainID    = "user_domain_id"
	PolicyKeyProjectID       = "project_id"
	PolicyKeyProjectDomainID = "project_domain_id"
	PolicyKeyRoles           = "roles"
	PolicyKeyIsAdminProject  = "is_admin_project"
)

// identityPlaceholder user_identity 中缺失字段的占位符
const identityPlaceholder = "-"

// optional 空字符串映射为 nil，作为映射中的缺失标记
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orPlaceholder(s string) string {
	if s == "" {
		return identityPlaceholder
	}
	return s
}

// UserIdentity 返回可读的身份串：
//
//	"{user} {tenant} {domain} {user_domain} {project_domain}"
//
// 缺失字段以 "-" 代替，全部缺失时为 "- - - - -"。
func (rc *RequestContext) UserIdentity() string {
	return strings.Join([]string{
		orPlaceholder(rc.v.user),
		orPlaceholder(rc.v.tenant),
		orPlaceholder(rc.v.domain),
		orPlaceholder(rc.v.userDomain),
		orPlaceholder(rc.v.projectDomain),
	}, " ")
}

// ToPolicyValues 返回供策略引擎使用的属性映射。
//
// Key 集合固定：user_id, user_domain_id, project_id, project_domain_id, roles, is_admin_project。
// 每次调用返回新映射。
func (rc *RequestContext) ToPolicyValues() map[string]any {
	return map[string]any{
		PolicyKeyUserID:          optional(rc.v.user),
		PolicyKeyUserDomainID:    optional(rc.v.userDomain),
		PolicyKeyProjectID:       optional(rc.v.tenant),
		PolicyKeyProjectDomainID: optional(rc.v.projectDomain),
		PolicyKeyRoles:           slices.Clone(rc.v.roles),
		PolicyKeyIsAdminProject:  rc.v.isAdminProject,
	}
}

// ToMap 返回上下文属性映射，FromMap 可以将其还原。
//
// 显示名字段（user_name 等）不在其中，经 ToMap → FromMap 往返后会丢失；
// 需要显示名时请使用 LoggingValues。
func (rc *RequestContext) ToMap() map[string]any {
	return map[string]any{
		KeyUser:           optional(rc.v.user),
		KeyTenant:         optional(rc.v.tenant),
		KeyDomain:         optional(rc.v.domain),
		KeyUserDomain:     optional(rc.v.userDomain),
		KeyProjectDomain:  optional(rc.v.projectDomain),
		KeyIsAdmin:        rc.v.isAdmin,
		KeyReadOnly:       rc.v.readOnly,
		KeyShowDeleted:    rc.v.showDeleted,
		KeyAuthToken:      optional(rc.v.authToken),
		KeyRequestID:      rc.v.requestID,
		KeyResourceUUID:   optional(rc.v.resourceUUID),
		KeyRoles:          slices.Clone(rc.v.roles),
		KeyUserIdentity:   rc.UserIdentity(),
		KeyIsAdminProject: rc.v.isAdminProject,
	}
}

// LoggingValues 返回日志系统使用的属性映射：ToMap 的结果加上五个显示名字段。
//
// Key 冲突时以 ToMap 的值为准（当前两组 Key 不相交）。
// 结果包含 auth_token 原文，输出前请自行脱敏，或使用 LogAttrs。
func (rc *RequestContext) LoggingValues() map[string]any {
	out := map[string]any{
		KeyUserName:          optional(rc.v.userName),
		KeyProjectName:       optional(rc.v.projectName),
		KeyDomainName:        optional(rc.v.domainName),
		KeyUserDomainName:    optional(rc.v.userDomainName),
		KeyProjectDomainName: optional(rc.v.projectDomainName),
	}
	maps.Copy(out, rc.ToMap())
	return out
}

// MarshalJSON 以 ToMap 的形式序列化，与 FromJSON 对称。
func (rc *RequestContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(rc.ToMap())
}
