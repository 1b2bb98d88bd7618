package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const participantKey contextKey = iota

// participantHeader mirrors the header the JSON-RPC surface reads.
const participantHeader = "X-Participant"

// getParticipant extracts the participant name from context.
func getParticipant(ctx context.Context) string {
	v, _ := ctx.Value(participantKey).(string)
	return v
}

// participantMiddleware extracts the participant from the X-Participant
// header (HTTP) or from _meta.participant (stdio).
func participantMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var participant string

			if extra := req.GetExtra(); extra != nil && extra.Header != nil {
				participant = strings.TrimSpace(extra.Header.Get(participantHeader))
			}

			// Some notifications carry nil params behind a non-nil
			// interface, so GetMeta may panic.
			if participant == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if name, ok := meta["participant"].(string); ok {
								participant = strings.TrimSpace(name)
							}
						}
					}()
				}
			}

			if participant != "" {
				ctx = context.WithValue(ctx, participantKey, participant)
			}
			return next(ctx, method, req)
		}
	}
}
