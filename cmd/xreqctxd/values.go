package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
)

// redactedValues 返回 LoggingValues，auth_token 非空时替换为 "***"
func redactedValues(rc *xreqctx.RequestContext) map[string]any {
	vals := rc.LoggingValues()
	if vals[xreqctx.KeyAuthToken] != nil {
		vals[xreqctx.KeyAuthToken] = "***"
	}
	return vals
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
