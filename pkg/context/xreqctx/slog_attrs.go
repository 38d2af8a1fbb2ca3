package xreqctx

import "log/slog"

// redactedToken 日志中 auth_token 的替代值
const redactedToken = "***"

// logKeyOrder LogAttrs 的输出顺序
var logKeyOrder = [...]string{
	KeyRequestID,
	KeyUserIdentity,
	KeyUser,
	KeyUserName,
	KeyTenant,
	KeyProjectName,
	KeyDomain,
	KeyDomainName,
	KeyUserDomain,
	KeyUserDomainName,
	KeyProjectDomain,
	KeyProjectDomainName,
	KeyRoles,
	KeyIsAdmin,
	KeyIsAdminProject,
	KeyReadOnly,
	KeyShowDeleted,
	KeyResourceUUID,
	KeyAuthToken,
}

// logAttrCount LogAttrs 最多输出的属性数量
const logAttrCount = len(logKeyOrder)

// AppendLogAttrs 将 rc 的 LoggingValues 追加为 slog 属性。
//
// 缺失（nil）的字段跳过，auth_token 输出为 "***"。rc 为 nil 时原样返回。
func AppendLogAttrs(attrs []slog.Attr, rc *RequestContext) []slog.Attr {
	if rc == nil {
		return attrs
	}
	vals := rc.LoggingValues()
	for _, key := range logKeyOrder {
		switch v := vals[key].(type) {
		case nil:
		case string:
			if key == KeyAuthToken {
				v = redactedToken
			}
			attrs = append(attrs, slog.String(key, v))
		case bool:
			attrs = append(attrs, slog.Bool(key, v))
		default:
			attrs = append(attrs, slog.Any(key, v))
		}
	}
	return attrs
}

// LogAttrs 返回 rc 的 slog 属性切片，rc 为 nil 时返回 nil。
// 每次调用会分配新切片，热路径建议使用 AppendLogAttrs。
func LogAttrs(rc *RequestContext) []slog.Attr {
	if rc == nil {
		return nil
	}
	return AppendLogAttrs(make([]slog.Attr, 0, logAttrCount), rc)
}
