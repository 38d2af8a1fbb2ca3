package xpropagate

import (
	"context"

	"github.com/omeyang/xreqctx/pkg/observability/xlog"
	"go.opentelemetry.io/otel/metric"
)

// Option 中间件/拦截器选项，HTTP 与 gRPC、入站与出站共用
type Option func(*config)

type config struct {
	trustRequestID bool
	forwardToken   bool
	logger         xlog.Logger
	meterProvider  metric.MeterProvider
	metrics        *metrics
}

// newConfig 应用选项并创建指标。指标创建失败只记录告警，不影响请求处理。
func newConfig(opts []Option) *config {
	cfg := &config{logger: xlog.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	m, err := newMetrics(cfg.meterProvider)
	if err != nil {
		cfg.logger.Warn(context.Background(), "xpropagate: metrics disabled", xlog.Err(err))
	}
	cfg.metrics = m
	return cfg
}

// WithTrustRequestID 采用上游传入的 X-Openstack-Request-Id 作为请求 ID。
//
// 默认不信任：每个请求都生成新的请求 ID。
func WithTrustRequestID() Option {
	return func(c *config) { c.trustRequestID = true }
}

// WithLogger 设置记录上下文创建的 Logger，默认丢弃。nil 被忽略。
func WithLogger(l xlog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMeterProvider 设置指标 MeterProvider。未设置时不记录指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}

// WithForwardToken 出站时写出 X-Auth-Token。
//
// 默认不写出，也不改动调用方自行设置的 X-Auth-Token；仅在下游属于同一信任域时开启。
func WithForwardToken() Option {
	return func(c *config) { c.forwardToken = true }
}

// manages 判断出站时是否由上下文接管该字段
func (c *config) manages(f outboundField) bool {
	return !f.secret || c.forwardToken
}
