package xreqctx

import (
	"context"
	"slices"
	"strings"
)

// =============================================================================
// 请求环境 Key（与上游认证中间件的约定，必须逐字节保持一致）
// =============================================================================

const (
	EnvAuthToken         = "HTTP_X_AUTH_TOKEN"
	EnvStorageToken      = "HTTP_X_STORAGE_TOKEN"
	EnvUserID            = "HTTP_X_USER_ID"
	EnvUser              = "HTTP_X_USER"
	EnvProjectID         = "HTTP_X_PROJECT_ID"
	EnvTenantID          = "HTTP_X_TENANT_ID"
	EnvTenant            = "HTTP_X_TENANT"
	EnvUserDomainID      = "HTTP_X_USER_DOMAIN_ID"
	EnvProjectDomainID   = "HTTP_X_PROJECT_DOMAIN_ID"
	EnvUserName          = "HTTP_X_USER_NAME"
	EnvProjectName       = "HTTP_X_PROJECT_NAME"
	EnvTenantName        = "HTTP_X_TENANT_NAME"
	EnvUserDomainName    = "HTTP_X_USER_DOMAIN_NAME"
	EnvProjectDomainName = "HTTP_X_PROJECT_DOMAIN_NAME"
	EnvRequestID         = "openstack.request_id"
	EnvRoles             = "HTTP_X_ROLES"
	EnvRole              = "HTTP_X_ROLE"
	EnvIsAdminProject    = "HTTP_X_IS_ADMIN_PROJECT"
)

// discoveryEntry 逻辑字段到候选 Key 的映射，按顺序取第一个存在的 Key
type discoveryEntry struct {
	f    field
	name string
	keys []string
}

// discoveryTable 键发现表。候选 Key 的顺序即兼容优先级（新名称在前，历史名称在后）。
var discoveryTable = [...]discoveryEntry{
	{fieldAuthToken, KeyAuthToken, []string{EnvAuthToken, EnvStorageToken}},
	{fieldUser, KeyUser, []string{EnvUserID, EnvUser}},
	{fieldTenant, KeyTenant, []string{EnvProjectID, EnvTenantID, EnvTenant}},
	{fieldUserDomain, KeyUserDomain, []string{EnvUserDomainID}},
	{fieldProjectDomain, KeyProjectDomain, []string{EnvProjectDomainID}},
	{fieldUserName, KeyUserName, []string{EnvUserName}},
	{fieldProjectName, KeyProjectName, []string{EnvProjectName, EnvTenantName}},
	{fieldUserDomainName, KeyUserDomainName, []string{EnvUserDomainName}},
	{fieldProjectDomainName, KeyProjectDomainName, []string{EnvProjectDomainName}},
	{fieldRequestID, KeyRequestID, []string{EnvRequestID}},
}

// DiscoveryTable 返回键发现表的副本：逻辑字段名 → 有序候选 Key。
// roles 与 is_admin_project 单独解析，不在表中。
func DiscoveryTable() map[string][]string {
	out := make(map[string][]string, len(discoveryTable))
	for _, e := range discoveryTable {
		out[e.name] = slices.Clone(e.keys)
	}
	return out
}

// FromEnviron 从请求环境（CGI 风格的 Key/Value）构造 RequestContext。
//
// 解析规则：
//   - 发现表中的字段：依次查找候选 Key，第一个存在的 Key 生效（存在即可，空值也算）
//   - roles：优先 HTTP_X_ROLES，其次 HTTP_X_ROLE；按逗号拆分并去除首尾空白，缺失为空列表
//   - is_admin_project：HTTP_X_IS_ADMIN_PROJECT 缺失时视为 "true"，与 "true" 做大小写不敏感比较，
//     其他任何值都为 false
//
// overrides 中已设置的字段跳过解析。解析完成后的发布规则与 New 相同。
func FromEnviron(ctx context.Context, environ map[string]string, overrides ...Option) *RequestContext {
	o := newOptions()
	o.apply(overrides)

	for _, e := range discoveryTable {
		if o.set.has(e.f) {
			continue
		}
		for _, key := range e.keys {
			if v, ok := environ[key]; ok {
				*o.v.stringField(e.f) = v
				break
			}
		}
	}

	if !o.set.has(fieldRoles) {
		raw, ok := environ[EnvRoles]
		if !ok {
			raw = environ[EnvRole]
		}
		o.v.roles = splitRoles(raw)
	}

	if !o.set.has(fieldIsAdminProject) {
		raw, ok := environ[EnvIsAdminProject]
		if !ok {
			raw = "true"
		}
		o.v.isAdminProject = strings.EqualFold(raw, "true")
	}

	return o.build(ctx)
}

// splitRoles 按逗号拆分角色串并去除每段首尾空白，空串返回空列表。
// 中间的空段（如 "a,,b"）保留为空字符串，与上游行为一致。
func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
