package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload truncates logged params and results.
const maxLoggedPayload = 2048

// trafficLoggingMiddleware logs each MCP exchange at debug level as one
// line: method, participant, payloads and how long the handler took.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", sessionID(req),
				"participant", getParticipant(ctx),
				"params", payload(requestParams(req)),
				"elapsed", time.Since(start),
			}
			// Notifications have no result.
			if !strings.HasPrefix(method, "notifications/") {
				attrs = append(attrs, "result", payload(result))
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp traffic", attrs...)
			return result, err
		}
	}
}

// sessionID and requestParams guard against typed-nil requests, whose
// accessors panic.
func sessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if s := req.GetSession(); s != nil {
		return s.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (p any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			p = nil
		}
	}()
	return req.GetParams()
}

func payload(v any) string {
	if v == nil {
		return "<nil>"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%T", v)
	}
	if len(data) > maxLoggedPayload {
		return string(data[:maxLoggedPayload]) + "…"
	}
	return string(data)
}
