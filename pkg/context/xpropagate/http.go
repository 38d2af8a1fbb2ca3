package xpropagate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/observability/xlog"
)

// EnvironFromHTTPHeader 将 HTTP Header 转换为 CGI 风格的请求环境。
//
// 每个 Header 映射为 HTTP_ 前缀、大写、连字符换为下划线的 Key，多个值以 "," 连接。
// 名称含下划线的 Header 被丢弃。
// trustRequestID 为 true 时，X-Openstack-Request-Id 的第一个值额外映射为 openstack.request_id。
func EnvironFromHTTPHeader(h http.Header, trustRequestID bool) map[string]string {
	if h == nil {
		return map[string]string{}
	}
	return buildEnviron(h, HeaderRequestID, trustRequestID)
}

// HTTPMiddleware 返回 HTTP 中间件：为每个请求打开作用域并发布从 Header 构造的 RequestContext，
// 响应 Header 中回写 X-Openstack-Request-Id。
func HTTPMiddleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := xreqctx.WithScope(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			rc := xreqctx.FromEnviron(ctx, EnvironFromHTTPHeader(r.Header, cfg.trustRequestID))
			w.Header().Set(HeaderRequestID, rc.RequestID())
			xreqctx.AnnotateSpan(ctx)
			cfg.metrics.record(ctx, transportHTTP, rc)
			cfg.logger.Debug(ctx, "request context created",
				slog.String("transport", transportHTTP),
				xlog.Method(r.Method),
				xlog.Path(r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectToRequest 将 ctx 作用域中的当前上下文写入 req 的 Header。
//
// 以 context 为准：有值则 Set，无值（或没有当前上下文）则 Del。
// X-Auth-Token 只在 WithForwardToken 时处理。req 或 req.Header 为 nil 时不做任何事。
func InjectToRequest(ctx context.Context, req *http.Request, opts ...Option) {
	injectHeader(ctx, req, newConfig(opts))
}

func injectHeader(ctx context.Context, req *http.Request, cfg *config) {
	if req == nil || req.Header == nil {
		return
	}
	rc := xreqctx.Current(ctx)
	for _, f := range outboundFields {
		if !cfg.manages(f) {
			continue
		}
		if rc != nil {
			if v := f.value(rc); v != "" {
				req.Header.Set(f.header, v)
				continue
			}
		}
		req.Header.Del(f.header)
	}
}

// Transport 包装 http.RoundTripper，发送前调用 InjectToRequest。base 为 nil 时使用 http.DefaultTransport。
func Transport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	cfg := newConfig(opts)
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		// RoundTripper 不得修改传入的请求
		req = req.Clone(req.Context())
		injectHeader(req.Context(), req, cfg)
		return base.RoundTrip(req)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
