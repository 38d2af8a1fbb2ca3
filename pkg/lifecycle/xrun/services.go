package xrun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve 返回在 ln 上运行 srv 的服务函数。
//
// ctx 取消后调用 Shutdown 等待在途请求，shutdownTimeout <= 0 表示不限时。
// 在此之前 srv 被外部关闭时返回 nil，监听失败时返回该错误。
func Serve(srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if srv == nil {
			return ErrNilServer
		}
		if ln == nil {
			return ErrNilListener
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx := context.WithoutCancel(ctx)
		if shutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
			defer cancel()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("xrun: shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Background 适配"异步启动 + 显式停止"风格的组件（如配置监视器）：
// 调用 start 后等待 ctx 取消，再返回 stop 的结果。
func Background(start func(), stop func() error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if start == nil || stop == nil {
			return ErrNilFunc
		}
		start()
		<-ctx.Done()
		return stop()
	}
}
