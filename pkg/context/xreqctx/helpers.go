package xreqctx

import (
	"context"
	"maps"
	"slices"
)

// AdminContext 构造管理员上下文：无身份信息，is_admin=true。
//
// 以 overwrite=false 构造，不会替换作用域中已发布的上下文；作用域为空时会被发布。
func AdminContext(ctx context.Context, showDeleted bool) *RequestContext {
	return New(ctx,
		WithIsAdmin(true),
		WithShowDeleted(showDeleted),
		WithOverwrite(false),
	)
}

// IsUserContext 判断 v 是否为普通用户上下文：非 nil 的 *RequestContext 且 is_admin 为 false。
func IsUserContext(v any) bool {
	rc, ok := v.(*RequestContext)
	if !ok || rc == nil {
		return false
	}
	return !rc.v.isAdmin
}

// FindInArgs 在参数列表中查找第一个 *RequestContext。
//
// 先扫描 kwargs 的值，再扫描 args。Go 的 map 无序，kwargs 按 Key 字典序扫描以保证结果确定。
// 供包装可变参数调用的中间件使用；普通代码应直接以 *RequestContext 作为类型化参数传递。
func FindInArgs(args []any, kwargs map[string]any) *RequestContext {
	for _, k := range slices.Sorted(maps.Keys(kwargs)) {
		if rc, ok := kwargs[k].(*RequestContext); ok && rc != nil {
			return rc
		}
	}
	for _, a := range args {
		if rc, ok := a.(*RequestContext); ok && rc != nil {
			return rc
		}
	}
	return nil
}
