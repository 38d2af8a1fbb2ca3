package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError      = "error"
	KeyDuration   = "duration"
	KeyComponent  = "component"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatusCode = "status_code"
)

// Err 返回错误属性，err 为 nil 时返回空属性（会被 handler 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 返回人类可读的耗时属性（如 "1.5s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 返回组件名称属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Method 返回 HTTP/RPC 方法属性
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path 返回请求路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// StatusCode 返回状态码属性
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}
