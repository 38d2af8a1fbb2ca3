package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/omeyang/xreqctx/pkg/config/xconf"
	"github.com/omeyang/xreqctx/pkg/context/xpropagate"
	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/lifecycle/xrun"
	"github.com/omeyang/xreqctx/pkg/observability/xlog"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
)

const readHeaderTimeout = 5 * time.Second

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动 HTTP 演示服务",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML/JSON），修改 log.level 后自动生效",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "监听地址，覆盖配置文件",
			},
			&cli.BoolFlag{
				Name:  "trust-request-id",
				Usage: "采用上游 X-Openstack-Request-Id，覆盖配置文件",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sc, cfg, err := loadServiceConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if cmd.IsSet("listen") {
				sc.Listen = cmd.String("listen")
			}
			if cmd.IsSet("trust-request-id") {
				sc.Propagation.TrustRequestID = cmd.Bool("trust-request-id")
			}
			if err := sc.Validate(); err != nil {
				return usagef("%v", err)
			}
			return serve(ctx, sc, cfg)
		},
	}
}

// loadServiceConfig 未指定路径时返回默认配置，cfg 为 nil
func loadServiceConfig(path string) (xconf.ServiceConfig, xconf.Config, error) {
	if path == "" {
		return xconf.DefaultServiceConfig(), nil, nil
	}
	cfg, err := xconf.New(path)
	if err != nil {
		return xconf.ServiceConfig{}, nil, err
	}
	sc, err := xconf.LoadServiceConfig(cfg)
	if err != nil {
		return xconf.ServiceConfig{}, nil, err
	}
	return sc, cfg, nil
}

func serve(ctx context.Context, sc xconf.ServiceConfig, cfg xconf.Config) error {
	logger, cleanup, err := sc.Log.LogBuilder().
		SetAttrs(xlog.Component("xreqctxd")).
		Build()
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	ln, err := net.Listen("tcp", sc.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", sc.Listen, err)
	}

	g, gctx := xrun.NewGroup(ctx, xrun.WithName("xreqctxd"), xrun.WithLogger(logger))
	if cfg != nil {
		w, err := xconf.Watch(cfg, levelReloader(logger))
		if err != nil {
			logger.Warn(gctx, "config watch disabled", xlog.Err(err))
		} else {
			g.Go("config-watch", xrun.Background(w.StartAsync, w.Stop))
		}
	}
	g.Go("http", serveHTTP(ln, newHandler(sc, logger), sc.ShutdownTimeout, logger))
	return g.Wait()
}

// levelReloader 配置文件变更时更新日志级别，其余字段需重启生效
func levelReloader(logger xlog.LoggerWithLevel) xconf.WatchCallback {
	return func(c xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		sc, err := xconf.LoadServiceConfig(c)
		if err != nil {
			logger.Warn(ctx, "config reload rejected", xlog.Err(err))
			return
		}
		level, _ := xlog.ParseLevel(sc.Log.Level)
		if level != logger.GetLevel() {
			logger.SetLevel(level)
			logger.Info(ctx, "log level changed", slog.String("new_level", level.String()))
		}
	}
}

// newHandler 组装路由与传播中间件
func newHandler(sc xconf.ServiceConfig, logger xlog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/context", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, logger, func(rc *xreqctx.RequestContext) any { return redactedValues(rc) })
	})
	mux.HandleFunc("GET /v1/policy", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, logger, func(rc *xreqctx.RequestContext) any { return rc.ToPolicyValues() })
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	opts := []xpropagate.Option{
		xpropagate.WithLogger(logger),
		xpropagate.WithMeterProvider(otel.GetMeterProvider()),
	}
	if sc.Propagation.TrustRequestID {
		opts = append(opts, xpropagate.WithTrustRequestID())
	}
	return xpropagate.HTTPMiddleware(opts...)(mux)
}

func respond(w http.ResponseWriter, r *http.Request, logger xlog.Logger, view func(*xreqctx.RequestContext) any) {
	rc, err := xreqctx.Require(r.Context())
	if err != nil {
		logger.Error(r.Context(), "no request context", xlog.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, view(rc)); err != nil {
		logger.Warn(r.Context(), "write response failed", xlog.Err(err))
		return
	}
	logger.Info(r.Context(), "request served",
		xlog.Method(r.Method), xlog.Path(r.URL.Path), xlog.StatusCode(http.StatusOK))
}

// serveHTTP 在 ln 上提供服务直到 ctx 取消，然后在 timeout 内优雅关闭
func serveHTTP(ln net.Listener, h http.Handler, timeout time.Duration, logger xlog.Logger) func(context.Context) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	run := xrun.Serve(srv, ln, timeout)
	return func(ctx context.Context) error {
		start := time.Now()
		logger.Info(ctx, "server started", slog.String("addr", ln.Addr().String()))
		if err := run(ctx); err != nil {
			return err
		}
		logger.Info(context.WithoutCancel(ctx), "server stopped", xlog.Duration(time.Since(start)))
		return nil
	}
}
