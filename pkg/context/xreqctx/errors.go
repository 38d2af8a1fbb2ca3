package xreqctx

import "errors"

// contextKey 包私有的 context key 类型
type contextKey string

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xreqctx: nil context")

	// ErrNoScope 表示 context 中未打开作用域（未调用 WithScope）。
	ErrNoScope = errors.New("xreqctx: no scope in context")

	// ErrNilRequestContext 表示传入的 *RequestContext 为 nil。
	ErrNilRequestContext = errors.New("xreqctx: nil request context")

	// ErrMissingRequestContext 表示作用域中没有已发布的请求上下文。
	ErrMissingRequestContext = errors.New("xreqctx: missing request context")

	// ErrInvalidJSON 表示 FromJSON 的输入不是合法的 JSON 对象。
	ErrInvalidJSON = errors.New("xreqctx: invalid json")
)
