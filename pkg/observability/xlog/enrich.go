package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
)

// ErrNilHandler 当 NewEnrichHandler 的 base handler 为 nil 时返回
var ErrNilHandler = errors.New("xlog: base handler is nil")

// maxEnrichAttrs 栈上预留的属性数量，覆盖 LogAttrs 的全部字段
const maxEnrichAttrs = 20

// EnrichHandler 将 ctx 作用域中当前 RequestContext 的日志字段追加到每条记录。
//
// 装饰任意 slog.Handler。作用域为空或没有作用域时不追加任何字段；
// auth_token 以 "***" 输出。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler
//
// 对 logger 调用 WithGroup 后，注入的字段也会落在该分组下。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 追加请求上下文字段后交给底层 handler。按 slog 约定先 Clone 再修改 record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := xreqctx.AppendLogAttrs(buf[:0], xreqctx.Current(ctx))

	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
