package xreqctx

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// mapStringFields FromMap 读取的字符串字段及其 Key
var mapStringFields = [...]struct {
	f   field
	key string
}{
	{fieldAuthToken, KeyAuthToken},
	{fieldUser, KeyUser},
	{fieldTenant, KeyTenant},
	{fieldDomain, KeyDomain},
	{fieldUserDomain, KeyUserDomain},
	{fieldProjectDomain, KeyProjectDomain},
	{fieldRequestID, KeyRequestID},
	{fieldResourceUUID, KeyResourceUUID},
	{fieldUserName, KeyUserName},
	{fieldProjectName, KeyProjectName},
	{fieldDomainName, KeyDomainName},
	{fieldUserDomainName, KeyUserDomainName},
	{fieldProjectDomainName, KeyProjectDomainName},
}

// mapBoolFields FromMap 读取的布尔字段及其 Key。
// 缺失时保留默认值：is_admin/read_only/show_deleted 为 false，is_admin_project 为 true。
var mapBoolFields = [...]struct {
	f   field
	key string
}{
	{fieldIsAdmin, KeyIsAdmin},
	{fieldReadOnly, KeyReadOnly},
	{fieldShowDeleted, KeyShowDeleted},
	{fieldIsAdminProject, KeyIsAdminProject},
}

// FromMap 从属性映射构造 RequestContext，是 ToMap 的逆过程。
//
// 每个字段按 "overrides 中的 Option > values 中的值 > 默认值" 解析。
// 接受的值类型：
//   - 字符串字段：string；nil 视为缺失
//   - 布尔字段：bool，或可被 strconv.ParseBool 解析的字符串；nil 视为缺失
//   - roles：[]string、[]any（取其中的字符串）或逗号分隔的字符串
//
// 类型不符的值视为缺失，不报错。values 为 nil 时等价于 New(ctx, overrides...)。
// user_identity 是派生字段，会被忽略。
func FromMap(ctx context.Context, values map[string]any, overrides ...Option) *RequestContext {
	o := newOptions()
	o.apply(overrides)

	for _, sf := range mapStringFields {
		if o.set.has(sf.f) {
			continue
		}
		if s, ok := values[sf.key].(string); ok {
			*o.v.stringField(sf.f) = s
		}
	}

	for _, bf := range mapBoolFields {
		if o.set.has(bf.f) {
			continue
		}
		if b, ok := boolValue(values[bf.key]); ok {
			*o.v.boolField(bf.f) = b
		}
	}

	if !o.set.has(fieldRoles) {
		if roles, ok := rolesValue(values[KeyRoles]); ok {
			o.v.roles = roles
		}
	}

	return o.build(ctx)
}

// FromJSON 解析 JSON 对象后调用 FromMap。
//
// data 不是 JSON 对象时返回包裹 ErrInvalidJSON 的错误。
func FromJSON(ctx context.Context, data []byte, overrides ...Option) (*RequestContext, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return FromMap(ctx, m, overrides...), nil
}

func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func rolesValue(v any) ([]string, bool) {
	switch r := v.(type) {
	case []string:
		out := make([]string, len(r))
		copy(out, r)
		return out, true
	case []any:
		out := make([]string, 0, len(r))
		for _, item := range r {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		return splitRoles(r), true
	default:
		return nil, false
	}
}
