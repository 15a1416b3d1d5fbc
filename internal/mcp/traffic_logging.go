package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/sciledger/internal/ledger"
)

const outcomeOK = "ok"

// trafficLoggingMiddleware logs one line per MCP exchange. Tool calls are
// logged at Info under the ledger operation they ran, with the outcome code
// and latency; everything else is Debug. Payloads are attached only when
// Debug is enabled.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			level := slog.LevelDebug
			operation := toolName(method, req)
			if operation != "" {
				level = slog.LevelInfo
			}
			if !logger.Enabled(ctx, level) {
				return next(ctx, method, req)
			}

			started := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{
				"direction", direction,
				"method", method,
				"outcome", outcomeOf(result, err),
				"duration", time.Since(started),
				"session_id", safeSessionID(req),
			}
			if operation != "" {
				attrs = append(attrs, "operation", operation)
			}
			if caller, cerr := ledger.CallerFrom(ctx); cerr == nil {
				attrs = append(attrs, "principal", caller.Principal, "call_id", caller.CallID)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			if logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, "params", formatPayload(safeParams(req)), "result", formatPayload(result))
			}
			logger.Log(ctx, level, "mcp call", attrs...)

			return result, err
		}
	}
}

// toolName returns the ledger operation a tools/call request targets.
func toolName(method string, req sdkmcp.Request) string {
	if method != "tools/call" {
		return ""
	}
	switch p := safeParams(req).(type) {
	case *sdkmcp.CallToolParamsRaw:
		return p.Name
	case *sdkmcp.CallToolParams:
		return p.Name
	}
	return ""
}

// outcomeOf reports "ok" or the error code of a failed exchange. Tool
// failures arrive as error results carrying an encoded APIError.
func outcomeOf(result sdkmcp.Result, err error) string {
	if err != nil {
		if apiErr := MapError(err); apiErr != nil {
			return apiErr.Code
		}
		return CodeInternal
	}
	tr, isTool := result.(*sdkmcp.CallToolResult)
	if !isTool || tr == nil || !tr.IsError {
		return outcomeOK
	}
	for _, c := range tr.Content {
		text, isText := c.(*sdkmcp.TextContent)
		if !isText {
			continue
		}
		var apiErr APIError
		if json.Unmarshal([]byte(text.Text), &apiErr) == nil && apiErr.Code != "" {
			return apiErr.Code
		}
	}
	return CodeInternal
}

func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
