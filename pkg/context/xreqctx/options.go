package xreqctx

import "slices"

// =============================================================================
// 字段标识
// =============================================================================

// field 构造参数标识，用于记录哪些字段被 Option 显式设置
type field uint8

const (
	fieldAuthToken field = iota
	fieldUser
	fieldTenant
	fieldDomain
	fieldUserDomain
	fieldProjectDomain
	fieldIsAdmin
	fieldReadOnly
	fieldShowDeleted
	fieldRequestID
	fieldResourceUUID
	fieldRoles
	fieldUserName
	fieldProjectName
	fieldDomainName
	fieldUserDomainName
	fieldProjectDomainName
	fieldIsAdminProject
)

// fieldSet 已显式设置字段的位图
type fieldSet uint32

func (s fieldSet) has(f field) bool { return s&(1<<f) != 0 }

// =============================================================================
// 字段存储
// =============================================================================

// values RequestContext 的全部存储字段
type values struct {
	authToken         string
	user              string
	userName          string
	tenant            string
	projectName       string
	domain            string
	domainName        string
	userDomain        string
	userDomainName    string
	projectDomain     string
	projectDomainName string
	isAdmin           bool
	isAdminProject    bool
	readOnly          bool
	showDeleted       bool
	roles             []string
	requestID         string
	resourceUUID      string
}

// stringField 返回字符串字段的指针，非字符串字段返回 nil。
// FromMap/FromEnviron 通过字段标识表驱动地逐字段解析。
func (v *values) stringField(f field) *string {
	switch f {
	case fieldAuthToken:
		return &v.authToken
	case fieldUser:
		return &v.user
	case fieldTenant:
		return &v.tenant
	case fieldDomain:
		return &v.domain
	case fieldUserDomain:
		return &v.userDomain
	case fieldProjectDomain:
		return &v.projectDomain
	case fieldRequestID:
		return &v.requestID
	case fieldResourceUUID:
		return &v.resourceUUID
	case fieldUserName:
		return &v.userName
	case fieldProjectName:
		return &v.projectName
	case fieldDomainName:
		return &v.domainName
	case fieldUserDomainName:
		return &v.userDomainName
	case fieldProjectDomainName:
		return &v.projectDomainName
	default:
		return nil
	}
}

// boolField 返回布尔字段的指针，非布尔字段返回 nil。
func (v *values) boolField(f field) *bool {
	switch f {
	case fieldIsAdmin:
		return &v.isAdmin
	case fieldReadOnly:
		return &v.readOnly
	case fieldShowDeleted:
		return &v.showDeleted
	case fieldIsAdminProject:
		return &v.isAdminProject
	default:
		return nil
	}
}

// =============================================================================
// Option
// =============================================================================

// Option 构造选项，每个选项对应一个构造参数。
//
// 显式传入的 Option 优先级最高：FromMap/FromEnviron 不会用来源中的值覆盖它。
type Option func(*options)

type options struct {
	v         values
	set       fieldSet
	overwrite bool
}

// newOptions 返回带文档默认值的选项：is_admin_project=true，overwrite=true，其余为零值。
func newOptions() *options {
	return &options{
		v:         values{isAdminProject: true},
		overwrite: true,
	}
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}

func (o *options) setString(f field, s string) {
	if p := o.v.stringField(f); p != nil {
		*p = s
		o.set |= 1 << f
	}
}

func (o *options) setBool(f field, b bool) {
	if p := o.v.boolField(f); p != nil {
		*p = b
		o.set |= 1 << f
	}
}

func (o *options) setRoles(roles []string) {
	o.v.roles = slices.Clone(roles)
	o.set |= 1 << fieldRoles
}

func stringOption(f field, s string) Option {
	return func(o *options) { o.setString(f, s) }
}

func boolOption(f field, b bool) Option {
	return func(o *options) { o.setBool(f, b) }
}

// WithAuthToken 设置认证 token（不透明的秘密字符串）。
func WithAuthToken(token string) Option { return stringOption(fieldAuthToken, token) }

// WithUser 设置用户 ID。
func WithUser(user string) Option { return stringOption(fieldUser, user) }

// WithTenant 设置项目 ID（历史名称 tenant）。
func WithTenant(tenant string) Option { return stringOption(fieldTenant, tenant) }

// WithProjectID 等价于 WithTenant。
func WithProjectID(projectID string) Option { return stringOption(fieldTenant, projectID) }

// WithDomain 设置域 ID。
func WithDomain(domain string) Option { return stringOption(fieldDomain, domain) }

// WithUserDomain 设置用户所属域 ID。
func WithUserDomain(userDomain string) Option { return stringOption(fieldUserDomain, userDomain) }

// WithProjectDomain 设置项目所属域 ID。
func WithProjectDomain(projectDomain string) Option {
	return stringOption(fieldProjectDomain, projectDomain)
}

// WithIsAdmin 设置是否为管理员上下文，默认 false。
func WithIsAdmin(isAdmin bool) Option { return boolOption(fieldIsAdmin, isAdmin) }

// WithReadOnly 设置只读标记，默认 false。
func WithReadOnly(readOnly bool) Option { return boolOption(fieldReadOnly, readOnly) }

// WithShowDeleted 设置是否展示已删除资源，默认 false。
func WithShowDeleted(showDeleted bool) Option { return boolOption(fieldShowDeleted, showDeleted) }

// WithRequestID 设置请求 ID。空字符串等同于未设置，构造时会自动生成。
func WithRequestID(requestID string) Option { return stringOption(fieldRequestID, requestID) }

// WithResourceUUID 设置资源 UUID。
func WithResourceUUID(resourceUUID string) Option {
	return stringOption(fieldResourceUUID, resourceUUID)
}

// WithRoles 设置角色列表。传入的切片会被复制，nil 视为空列表。
func WithRoles(roles ...string) Option {
	return func(o *options) { o.setRoles(roles) }
}

// WithUserName 设置用户显示名。
func WithUserName(name string) Option { return stringOption(fieldUserName, name) }

// WithProjectName 设置项目显示名。
func WithProjectName(name string) Option { return stringOption(fieldProjectName, name) }

// WithDomainName 设置域显示名。
func WithDomainName(name string) Option { return stringOption(fieldDomainName, name) }

// WithUserDomainName 设置用户所属域显示名。
func WithUserDomainName(name string) Option { return stringOption(fieldUserDomainName, name) }

// WithProjectDomainName 设置项目所属域显示名。
func WithProjectDomainName(name string) Option {
	return stringOption(fieldProjectDomainName, name)
}

// WithIsAdminProject 设置 token 是否指定当前项目为管理项目，默认 true。
func WithIsAdminProject(isAdminProject bool) Option {
	return boolOption(fieldIsAdminProject, isAdminProject)
}

// WithOverwrite 控制构造时是否覆盖作用域中已发布的上下文，默认 true。
//
// false 只在作用域已有上下文时抑制发布；空作用域依然会发布。
func WithOverwrite(overwrite bool) Option {
	return func(o *options) { o.overwrite = overwrite }
}
