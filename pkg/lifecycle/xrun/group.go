package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xreqctx/pkg/observability/xlog"
)

// Group 管理多个服务的并发运行和协调关闭。
//
// Go 与 Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group 及其派生 context。任一服务返回错误时该 context 被取消。
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     o,
	}, egCtx
}

// Go 以 name 启动服务 fn。fn 应在 ctx 取消后尽快返回。
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Cancel 取消全部服务。非 nil 的 cause 会由 Wait 返回。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Wait 等待全部服务退出。
//
// 返回第一个服务错误；由取消引起的 context.Canceled 被过滤，
// 但 Cancel 设置的 cause 会被保留。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	canceled := g.causeCtx.Err() != nil
	if errors.Is(err, context.Canceled) && canceled {
		err = nil
	}
	if err == nil && canceled {
		if cause := context.Cause(g.causeCtx); !errors.Is(cause, context.Canceled) {
			return cause
		}
	}
	return err
}
