package xpropagate

import (
	"context"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                = "github.com/omeyang/xreqctx/pkg/context/xpropagate"
	metricNameContextCreated = "xreqctx.contexts.created"

	transportHTTP = "http"
	transportGRPC = "grpc"
)

// metrics 入站上下文指标，nil 接收者安全
type metrics struct {
	created metric.Int64Counter
}

// newMetrics 创建指标。mp 为 nil 时返回 nil（不记录指标）。
func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	if mp == nil {
		return nil, nil
	}
	created, err := mp.Meter(meterName).Int64Counter(
		metricNameContextCreated,
		metric.WithDescription("入站请求构造的请求上下文数量"),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return nil, err
	}
	return &metrics{created: created}, nil
}

func (m *metrics) record(ctx context.Context, transport string, rc *xreqctx.RequestContext) {
	if m == nil || rc == nil {
		return
	}
	m.created.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.Bool("is_admin", rc.IsAdmin()),
	))
}
