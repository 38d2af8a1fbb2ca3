package xconf

import (
	"fmt"
	"net"
	"time"

	"github.com/omeyang/xreqctx/pkg/observability/xlog"
)

// ServiceConfig xreqctxd 服务配置
//
// 示例（YAML）：
//
//	listen: ":8080"
//	shutdown_timeout: 10s
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/xreqctxd.log
//	propagation:
//	  trust_request_id: true
type ServiceConfig struct {
	Listen          string            `koanf:"listen"`
	ShutdownTimeout time.Duration     `koanf:"shutdown_timeout"`
	Log             LogConfig         `koanf:"log"`
	Propagation     PropagationConfig `koanf:"propagation"`
}

// LogConfig 日志配置，字段对应 xlog.Builder 的同名设置
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	AddSource  bool   `koanf:"add_source"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// PropagationConfig 请求上下文传播配置
type PropagationConfig struct {
	// TrustRequestID 是否采用上游传入的请求 ID。关闭时每个请求都生成新 ID。
	TrustRequestID bool `koanf:"trust_request_id"`
}

// DefaultServiceConfig 返回默认服务配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Listen:          ":8080",
		ShutdownTimeout: 10 * time.Second,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  xlog.DefaultMaxSizeMB,
			MaxBackups: xlog.DefaultMaxBackups,
		},
	}
}

// LoadServiceConfig 在默认值之上反序列化 cfg，并校验结果。
func LoadServiceConfig(cfg Config) (ServiceConfig, error) {
	sc := DefaultServiceConfig()
	if cfg == nil {
		return sc, nil
	}
	if err := cfg.Unmarshal("", &sc); err != nil {
		return ServiceConfig{}, err
	}
	if err := sc.Validate(); err != nil {
		return ServiceConfig{}, err
	}
	return sc, nil
}

// Validate 校验服务配置，错误包装 ErrInvalidServiceConfig。
func (c ServiceConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("%w: listen %q: %w", ErrInvalidServiceConfig, c.Listen, err)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidServiceConfig)
	}
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidServiceConfig, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidServiceConfig, c.Log.Format)
	}
	if c.Log.File != "" && (c.Log.MaxSizeMB <= 0 || c.Log.MaxBackups < 0) {
		return fmt.Errorf("%w: log rotation size=%d backups=%d",
			ErrInvalidServiceConfig, c.Log.MaxSizeMB, c.Log.MaxBackups)
	}
	return nil
}

// LogBuilder 按日志配置返回 xlog.Builder，调用方可继续追加设置后 Build。
func (c LogConfig) LogBuilder() *xlog.Builder {
	b := xlog.New().
		SetLevelString(c.Level).
		SetFormat(c.Format).
		SetAddSource(c.AddSource)
	if c.File != "" {
		b = b.SetRotation(c.File,
			xlog.WithMaxSize(c.MaxSizeMB),
			xlog.WithMaxBackups(c.MaxBackups),
		)
	}
	return b
}
