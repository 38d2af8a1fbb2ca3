package xpropagate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/observability/xlog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetaRequestID 请求 ID 的 Metadata Key。其余 Metadata Key 均为对应 Header 名称的小写形式。
const MetaRequestID = "x-openstack-request-id"

// EnvironFromMetadata 将 gRPC Metadata 转换为 CGI 风格的请求环境。
//
// 规则与 EnvironFromHTTPHeader 相同；以 ":" 开头的伪 Header 被跳过。
func EnvironFromMetadata(md metadata.MD, trustRequestID bool) map[string]string {
	if md == nil {
		return map[string]string{}
	}
	return buildEnviron(md, MetaRequestID, trustRequestID)
}

// establish 为入站 RPC 打开作用域并发布上下文
func (cfg *config) establish(ctx context.Context, method string) (context.Context, *xreqctx.RequestContext, error) {
	ctx, err := xreqctx.WithScope(ctx)
	if err != nil {
		return nil, nil, status.Error(codes.Internal, err.Error())
	}
	md, _ := metadata.FromIncomingContext(ctx)
	rc := xreqctx.FromEnviron(ctx, EnvironFromMetadata(md, cfg.trustRequestID))

	xreqctx.AnnotateSpan(ctx)
	cfg.metrics.record(ctx, transportGRPC, rc)
	cfg.logger.Debug(ctx, "request context created",
		slog.String("transport", transportGRPC),
		xlog.Method(method),
	)
	return ctx, rc, nil
}

// GRPCUnaryServerInterceptor 返回一元服务端拦截器：为每个 RPC 打开作用域并发布从 Metadata
// 构造的 RequestContext，响应 Header 中回写 x-openstack-request-id。
func GRPCUnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	cfg := newConfig(opts)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var method string
		if info != nil {
			method = info.FullMethod
		}
		ctx, rc, err := cfg.establish(ctx, method)
		if err != nil {
			return nil, err
		}
		// 直接调用拦截器（无 transport stream）时 SetHeader 返回错误，忽略即可
		_ = grpc.SetHeader(ctx, metadata.Pairs(MetaRequestID, rc.RequestID()))
		return handler(ctx, req)
	}
}

// GRPCStreamServerInterceptor 返回流式服务端拦截器，语义与一元拦截器相同。
func GRPCStreamServerInterceptor(opts ...Option) grpc.StreamServerInterceptor {
	cfg := newConfig(opts)

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		var method string
		if info != nil {
			method = info.FullMethod
		}
		ctx, rc, err := cfg.establish(ss.Context(), method)
		if err != nil {
			return err
		}
		_ = ss.SetHeader(metadata.Pairs(MetaRequestID, rc.RequestID()))
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// wrappedServerStream 包装 ServerStream 以覆盖 Context
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// InjectToOutgoingContext 将 ctx 作用域中的当前上下文写入 outgoing metadata。
//
// 已有的 outgoing metadata 被复制后修改；上下文字段以 context 为准，有值则 Set，无值则删除。
// x-auth-token 只在 WithForwardToken 时处理。
func InjectToOutgoingContext(ctx context.Context, opts ...Option) context.Context {
	return injectOutgoing(ctx, newConfig(opts))
}

func injectOutgoing(ctx context.Context, cfg *config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}

	rc := xreqctx.Current(ctx)
	for _, f := range outboundFields {
		if !cfg.manages(f) {
			continue
		}
		key := strings.ToLower(f.header)
		if rc != nil {
			if v := f.value(rc); v != "" {
				md.Set(key, v)
				continue
			}
		}
		md.Delete(key)
	}

	if len(md) == 0 && !ok {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// GRPCUnaryClientInterceptor 返回一元客户端拦截器，调用前执行 InjectToOutgoingContext。
func GRPCUnaryClientInterceptor(opts ...Option) grpc.UnaryClientInterceptor {
	cfg := newConfig(opts)
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(injectOutgoing(ctx, cfg), method, req, reply, cc, opts...)
	}
}

// GRPCStreamClientInterceptor 返回流式客户端拦截器，建立流前执行 InjectToOutgoingContext。
func GRPCStreamClientInterceptor(opts ...Option) grpc.StreamClientInterceptor {
	cfg := newConfig(opts)
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(injectOutgoing(ctx, cfg), desc, cc, method, opts...)
	}
}
