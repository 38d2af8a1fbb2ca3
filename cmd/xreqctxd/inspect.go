package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/omeyang/xreqctx/pkg/context/xpropagate"
	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/observability/xlog"
	"github.com/urfave/cli/v3"
)

func createInspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "从 Header 构造请求上下文并输出 JSON",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "请求 Header，格式 Name=Value，可重复",
			},
			&cli.BoolFlag{
				Name:  "policy",
				Usage: "输出策略引擎凭据（ToPolicyValues）而非完整属性",
			},
			&cli.BoolFlag{
				Name:  "trust-request-id",
				Usage: "采用 X-Openstack-Request-Id 作为请求 ID",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "向 stderr 输出带/不带请求上下文的示例日志",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			h, err := parseHeaders(cmd.StringSlice("header"))
			if err != nil {
				return err
			}
			return inspect(ctx, cmd, h)
		},
	}
}

// parseHeaders 解析 Name=Value 形式的 Header 参数，同名 Header 追加为多值
func parseHeaders(pairs []string) (http.Header, error) {
	h := http.Header{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usagef("header %q 格式应为 Name=Value", p)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func inspect(ctx context.Context, cmd *cli.Command, h http.Header) error {
	ctx, err := xreqctx.WithScope(ctx)
	if err != nil {
		return err
	}
	rc := xreqctx.FromEnviron(ctx, xpropagate.EnvironFromHTTPHeader(h, cmd.Bool("trust-request-id")))

	if cmd.Bool("verbose") {
		errw := cmd.Root().ErrWriter
		if errw == nil {
			errw = os.Stderr
		}
		logger, cleanup, err := xlog.New().SetOutput(errw).Build()
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()
		logger.Info(context.Background(), "message without context")
		logger.Info(ctx, "message with context")
	}

	if cmd.Bool("policy") {
		return writeJSON(cmd.Root().Writer, rc.ToPolicyValues())
	}
	return writeJSON(cmd.Root().Writer, redactedValues(rc))
}
