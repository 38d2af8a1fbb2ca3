package xpropagate

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
)

// HTTP Header 名称，与认证中间件写入的 Header 一致
const (
	HeaderAuthToken         = "X-Auth-Token"
	HeaderUserID            = "X-User-Id"
	HeaderProjectID         = "X-Project-Id"
	HeaderUserDomainID      = "X-User-Domain-Id"
	HeaderProjectDomainID   = "X-Project-Domain-Id"
	HeaderUserName          = "X-User-Name"
	HeaderProjectName       = "X-Project-Name"
	HeaderUserDomainName    = "X-User-Domain-Name"
	HeaderProjectDomainName = "X-Project-Domain-Name"
	HeaderRoles             = "X-Roles"
	HeaderIsAdminProject    = "X-Is-Admin-Project"
	HeaderRequestID         = "X-Openstack-Request-Id"
)

// outboundField 出站 Header 与取值函数，空字符串表示缺失。
// secret 字段只在 WithForwardToken 时写出。
type outboundField struct {
	header string
	value  func(*xreqctx.RequestContext) string
	secret bool
}

var outboundFields = [...]outboundField{
	{HeaderAuthToken, (*xreqctx.RequestContext).AuthToken, true},
	{HeaderUserID, (*xreqctx.RequestContext).User, false},
	{HeaderProjectID, (*xreqctx.RequestContext).Tenant, false},
	{HeaderUserDomainID, (*xreqctx.RequestContext).UserDomain, false},
	{HeaderProjectDomainID, (*xreqctx.RequestContext).ProjectDomain, false},
	{HeaderUserName, (*xreqctx.RequestContext).UserName, false},
	{HeaderProjectName, (*xreqctx.RequestContext).ProjectName, false},
	{HeaderUserDomainName, (*xreqctx.RequestContext).UserDomainName, false},
	{HeaderProjectDomainName, (*xreqctx.RequestContext).ProjectDomainName, false},
	{HeaderRoles, func(rc *xreqctx.RequestContext) string { return strings.Join(rc.Roles(), ",") }, false},
	{HeaderIsAdminProject, func(rc *xreqctx.RequestContext) string { return strconv.FormatBool(rc.IsAdminProject()) }, false},
	{HeaderRequestID, (*xreqctx.RequestContext).RequestID, false},
}

// environKey 将 Header 名称转换为 CGI 环境 Key：X-User-Id → HTTP_X_USER_ID。
func environKey(name string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// skipHeader 判断入站 Header 是否不进入请求环境：空值、HTTP/2 伪头部、含下划线的名称。
//
// 下划线与连字符映射到同一个环境 Key，X_User_Id 会与上游代理设置的 X-User-Id 冲突，
// 因此与 nginx 等网关一样直接丢弃含下划线的 Header。
func skipHeader(name string, vals []string) bool {
	return len(vals) == 0 || strings.HasPrefix(name, ":") || strings.Contains(name, "_")
}

// buildEnviron 将 Header/Metadata 形式的多值映射转换为请求环境。
//
// 同一 Header 的多个值以 "," 连接（RFC 9110 §5.3）。仅大小写不同的名称视为同一 Header，
// 按名称字典序合并，结果与 map 遍历顺序无关。
func buildEnviron(src map[string][]string, requestIDKey string, trustRequestID bool) map[string]string {
	env := make(map[string]string, len(src)+1)
	for _, name := range slices.Sorted(maps.Keys(src)) {
		vals := src[name]
		if skipHeader(name, vals) {
			continue
		}
		key := environKey(name)
		v := strings.Join(vals, ",")
		if prev, ok := env[key]; ok {
			v = prev + "," + v
		}
		env[key] = v
	}
	if trustRequestID {
		if vals := src[requestIDKey]; len(vals) > 0 {
			env[xreqctx.EnvRequestID] = vals[0]
		}
	}
	return env
}
