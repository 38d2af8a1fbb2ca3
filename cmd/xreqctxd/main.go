// xreqctxd 是请求上下文传播的演示服务与调试工具。
//
// 用法:
//
//	xreqctxd <命令> [命令参数]
//
// 命令:
//
//	serve      启动 HTTP 服务，入站请求经 xpropagate 中间件构造请求上下文
//	inspect    从命令行给出的 Header 构造请求上下文并输出 JSON
//
// 退出码:
//
//	0: 成功
//	1: 运行失败
//	2: 参数错误
//
// 示例:
//
//	xreqctxd serve --config /etc/xreqctxd.yaml
//	xreqctxd inspect -H X-User-Id=u1 -H X-Roles=admin,member --policy
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags "-X main.Version=..." 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// usageError 参数错误，对应退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xreqctxd",
		Usage:     "请求上下文传播演示服务",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createServeCommand(),
			createInspectCommand(),
		},
		// Header 值中的逗号（如 X-Roles=a,b）不能被当作多值分隔符
		DisableSliceFlagSeparator: true,
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

// run 执行命令并返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}

	var ue *usageError
	if errors.As(err, &ue) || isCLIUsageError(err) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}

// isCLIUsageError 识别 urfave/cli 产生的 flag 解析错误
func isCLIUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "flag provided but not defined") ||
		strings.HasPrefix(msg, "invalid value") ||
		strings.Contains(msg, "No help topic for")
}
