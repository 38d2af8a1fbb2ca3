package xreqctx

import (
	"context"
	"sync/atomic"
)

const keyScope = contextKey("xreqctx:scope")

// Scope 执行作用域的当前上下文槽位。
//
// 一个请求（或任务）对应一个 Scope，槽位只保存一个 *RequestContext，
// 每次发布都是替换而非追加。不同 Scope 之间互不可见。
//
// 槽位读写是原子的，同一请求派生出的多个 goroutine 可以安全共享同一个 Scope。
type Scope struct {
	current atomic.Pointer[RequestContext]
}

// WithScope 在 ctx 上打开一个新的空作用域。
//
// 嵌套调用会遮蔽外层作用域，外层槽位不受影响。
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithScope(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyScope, &Scope{}), nil
}

// Into 打开新的作用域并发布 rc，用于已持有上下文、需要交给下游隐式读取的场景。
func Into(ctx context.Context, rc *RequestContext) (context.Context, error) {
	if rc == nil {
		return nil, ErrNilRequestContext
	}
	ctx, err := WithScope(ctx)
	if err != nil {
		return nil, err
	}
	ScopeFrom(ctx).Publish(rc)
	return ctx, nil
}

// ScopeFrom 返回 ctx 中最近打开的作用域，没有则返回 nil。
func ScopeFrom(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(keyScope).(*Scope)
	return s
}

// Current 返回作用域中的当前上下文，未发布返回 nil。nil Scope 安全。
func (s *Scope) Current() *RequestContext {
	if s == nil {
		return nil
	}
	return s.current.Load()
}

// Publish 将 rc 设为作用域的当前上下文，替换已有值。传入 nil 会清空槽位。
func (s *Scope) Publish(rc *RequestContext) {
	if s == nil {
		return
	}
	s.current.Store(rc)
}

// publishIfEmpty 仅在槽位为空时发布，返回是否发布成功。
// 检查与写入是一次 CAS，并发构造时只有第一个写者生效。
func (s *Scope) publishIfEmpty(rc *RequestContext) bool {
	if s == nil {
		return false
	}
	return s.current.CompareAndSwap(nil, rc)
}

// Publish 将 rc 发布为 ctx 作用域的当前上下文。
//
// 错误：ctx 为 nil 返回 ErrNilContext，未打开作用域返回 ErrNoScope，
// rc 为 nil 返回 ErrNilRequestContext。
func Publish(ctx context.Context, rc *RequestContext) error {
	if ctx == nil {
		return ErrNilContext
	}
	if rc == nil {
		return ErrNilRequestContext
	}
	s := ScopeFrom(ctx)
	if s == nil {
		return ErrNoScope
	}
	s.Publish(rc)
	return nil
}

// Current 返回 ctx 作用域中的当前上下文。
// ctx 为 nil、未打开作用域或未发布时返回 nil。
func Current(ctx context.Context) *RequestContext {
	return ScopeFrom(ctx).Current()
}

// Require 返回当前上下文，不存在时返回错误。
//
// 语义：值必须存在，缺失时返回 ErrMissingRequestContext。
// 如果 ctx 为 nil，返回 ErrNilContext。
func Require(ctx context.Context) (*RequestContext, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	rc := Current(ctx)
	if rc == nil {
		return nil, ErrMissingRequestContext
	}
	return rc, nil
}
