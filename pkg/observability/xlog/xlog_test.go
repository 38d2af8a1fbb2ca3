package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/observability/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, b *xlog.Builder) (xlog.LoggerWithLevel, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, cleanup, err := b.SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestBuilder_Defaults(t *testing.T) {
	logger, cleanup, err := xlog.New().Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	assert.Equal(t, xlog.LevelInfo, logger.GetLevel())
	assert.False(t, logger.Enabled(context.Background(), xlog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), xlog.LevelInfo))
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *xlog.Builder
		is   error
	}{
		{"非法级别", xlog.New().SetLevelString("loud"), xlog.ErrUnknownLevel},
		{"非法格式", xlog.New().SetFormat("xml"), nil},
		{"nil 输出", xlog.New().SetOutput(nil), nil},
		{"空轮转文件名", xlog.New().SetRotation("  "), xlog.ErrInvalidRotation},
		{"负数备份", xlog.New().SetRotation("a.log", xlog.WithMaxBackups(-1)), xlog.ErrInvalidRotation},
		{"零大小", xlog.New().SetRotation("a.log", xlog.WithMaxSize(0)), xlog.ErrInvalidRotation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, cleanup, err := tt.b.Build()
			require.Error(t, err)
			assert.Nil(t, logger)
			assert.Nil(t, cleanup)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := xlog.New().SetLevelString("loud").SetFormat("xml").Build()
	assert.ErrorIs(t, err, xlog.ErrUnknownLevel)
}

func TestLogger_LevelsAndDynamicLevel(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New().SetEnrich(false))
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "info")
	logger.SetLevel(xlog.LevelDebug)
	logger.Debug(ctx, "shown")
	logger.SetLevel(xlog.LevelError)
	logger.Warn(ctx, "hidden")
	logger.Error(ctx, "error", slog.String("k", "v"))

	recs := decodeLines(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "info", recs[0]["msg"])
	assert.Equal(t, "shown", recs[1]["msg"])
	assert.Equal(t, "DEBUG", recs[1]["level"])
	assert.Equal(t, "v", recs[2]["k"])
}

func TestLogger_WithAndGroup(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New().SetEnrich(false).SetAttrs(slog.String("service", "demo")))
	ctx := context.Background()

	child := logger.With(slog.String("component", "api"))
	child.WithGroup("req").Info(ctx, "grouped", slog.Int("n", 1))
	assert.Same(t, logger, logger.With(), "无属性返回自身")
	assert.Same(t, logger, logger.WithGroup(""), "空分组返回自身")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "demo", recs[0]["service"])
	assert.Equal(t, "api", recs[0]["component"])
	assert.Equal(t, map[string]any{"n": float64(1)}, recs[0]["req"])

	// 派生 logger 共享级别
	logger.SetLevel(xlog.LevelError)
	child.Info(ctx, "dropped")
	assert.Len(t, decodeLines(t, buf), 1)
}

func TestLogger_NilContext(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New())
	//nolint:staticcheck // 测试 nil ctx
	assert.NotPanics(t, func() { logger.Info(nil, "nil ctx") })
	assert.Len(t, decodeLines(t, buf), 1)
}

func TestLogger_AddSource(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New().SetAddSource(true))
	logger.Info(context.Background(), "src")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	src, ok := recs[0]["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, src["file"], "xlog_test.go")
}

func TestLogger_ReplaceAttr(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New().SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "password" {
			return slog.Attr{}
		}
		return a
	}))
	logger.Info(context.Background(), "login", slog.String("password", "p"), slog.String("user", "u"))

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "password")
	assert.Equal(t, "u", recs[0]["user"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_OnError(t *testing.T) {
	var got []error
	logger, cleanup, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) { got = append(got, err) }).
		Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	logger.Info(context.Background(), "lost")
	require.Len(t, got, 1)
	assert.EqualError(t, got[0], "disk full")

	panicky, cleanup2, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(error) { panic("boom") }).
		Build()
	require.NoError(t, err)
	defer func() { _ = cleanup2() }()
	assert.NotPanics(t, func() { panicky.Info(context.Background(), "lost") })
}

func TestBuilder_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, cleanup, err := xlog.New().
		SetFormat("json").
		SetRotation(path, xlog.WithMaxSize(1), xlog.WithMaxBackups(2), xlog.WithMaxAge(1),
			xlog.WithCompress(false), xlog.WithLocalTime(true)).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "to file")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup(), "cleanup 可重复调用")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestDiscard(t *testing.T) {
	l := xlog.Discard()
	assert.NotPanics(t, func() {
		l.Error(context.Background(), "nothing")
		l.With(slog.String("k", "v")).WithGroup("g").Info(context.Background(), "nothing")
	})
}

// =============================================================================
// EnrichHandler
// =============================================================================

func TestEnrich_InjectsCurrentContext(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New())

	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	rc := xreqctx.New(ctx,
		xreqctx.WithUser("u1"),
		xreqctx.WithTenant("p1"),
		xreqctx.WithAuthToken("secret"),
		xreqctx.WithRoles("member"),
	)

	logger.Info(ctx, "with context")
	logger.Info(context.Background(), "without context")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 2)

	assert.Equal(t, rc.RequestID(), recs[0]["request_id"])
	assert.Equal(t, "u1 p1 - - -", recs[0]["user_identity"])
	assert.Equal(t, "***", recs[0]["auth_token"])
	assert.Equal(t, []any{"member"}, recs[0]["roles"])
	assert.NotContains(t, recs[0], "domain", "缺失字段不输出")
	assert.NotContains(t, buf.String(), "secret")

	assert.NotContains(t, recs[1], "request_id")
	assert.NotContains(t, recs[1], "user_identity")
}

func TestEnrich_Disabled(t *testing.T) {
	logger, buf := newJSONLogger(t, xlog.New().SetEnrich(false))

	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	xreqctx.New(ctx, xreqctx.WithUser("u1"))
	logger.Info(ctx, "plain")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "request_id")
}

func TestNewEnrichHandler(t *testing.T) {
	_, err := xlog.NewEnrichHandler(nil)
	assert.ErrorIs(t, err, xlog.ErrNilHandler)

	var buf bytes.Buffer
	h, err := xlog.NewEnrichHandler(slog.NewJSONHandler(&buf, nil))
	require.NoError(t, err)

	ctx, err := xreqctx.Into(context.Background(),
		xreqctx.New(context.Background(), xreqctx.WithRequestID("req-1")))
	require.NoError(t, err)

	l := slog.New(h).With("component", "test").WithGroup("g")
	l.InfoContext(ctx, "msg", "k", "v")

	out := buf.String()
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"g":{`)
	assert.Contains(t, out, `"request_id":"req-1"`)
}
