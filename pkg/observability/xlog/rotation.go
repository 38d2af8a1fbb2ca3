package xlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 30
)

// ErrInvalidRotation 轮转配置非法（文件名为空或数值为负）
var ErrInvalidRotation = errors.New("xlog: invalid rotation config")

// RotationOption 日志轮转选项
type RotationOption func(*rotationConfig)

type rotationConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	localTime  bool
}

// WithMaxSize 设置单个日志文件最大大小（MB），必须 > 0
func WithMaxSize(mb int) RotationOption {
	return func(c *rotationConfig) { c.maxSizeMB = mb }
}

// WithMaxBackups 设置保留的备份文件数，0 表示不按数量清理
func WithMaxBackups(n int) RotationOption {
	return func(c *rotationConfig) { c.maxBackups = n }
}

// WithMaxAge 设置备份保留天数，0 表示不按天数清理
func WithMaxAge(days int) RotationOption {
	return func(c *rotationConfig) { c.maxAgeDays = days }
}

// WithCompress 设置是否 gzip 压缩备份
func WithCompress(compress bool) RotationOption {
	return func(c *rotationConfig) { c.compress = compress }
}

// WithLocalTime 设置备份文件名是否使用本地时间（默认 UTC）
func WithLocalTime(local bool) RotationOption {
	return func(c *rotationConfig) { c.localTime = local }
}

// newRotator 创建基于 lumberjack 的轮转 writer。目录不存在时由 lumberjack 在首次写入时创建。
func newRotator(filename string, opts ...RotationOption) (*lumberjack.Logger, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidRotation)
	}

	cfg := rotationConfig{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		maxAgeDays: DefaultMaxAgeDays,
		compress:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxSizeMB <= 0 || cfg.maxBackups < 0 || cfg.maxAgeDays < 0 {
		return nil, fmt.Errorf("%w: size=%d backups=%d age=%d",
			ErrInvalidRotation, cfg.maxSizeMB, cfg.maxBackups, cfg.maxAgeDays)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Clean(filename),
		MaxSize:    cfg.maxSizeMB,
		MaxBackups: cfg.maxBackups,
		MaxAge:     cfg.maxAgeDays,
		Compress:   cfg.compress,
		LocalTime:  cfg.localTime,
	}, nil
}
