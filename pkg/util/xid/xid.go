package xid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RequestIDPrefix 请求 ID 固定前缀
const RequestIDPrefix = "req-"

// ErrInvalidRequestID 请求 ID 格式非法（缺少前缀或 UUID 部分无法解析）
var ErrInvalidRequestID = errors.New("xid: invalid request id")

// NewRequestID 生成新的请求 ID。
//
// 格式: "req-" + 36 字符 UUID 文本。
//
// 熵源不可用时 uuid.NewString 会 panic：系统无法提供安全随机数时进程不应继续服务。
func NewRequestID() string {
	return RequestIDPrefix + uuid.NewString()
}

// ParseRequestID 解析请求 ID，返回其中的 UUID。
func ParseRequestID(s string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(s, RequestIDPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidRequestID, RequestIDPrefix)
	}
	// uuid.Parse 还接受 urn:uuid: 和花括号形式，这里只认标准文本
	if len(rest) != 36 {
		return uuid.Nil, fmt.Errorf("%w: want 36 chars after prefix, got %d", ErrInvalidRequestID, len(rest))
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidRequestID, err)
	}
	return id, nil
}

// IsRequestID 判断 s 是否为格式合法的请求 ID。
func IsRequestID(s string) bool {
	_, err := ParseRequestID(s)
	return err == nil
}
