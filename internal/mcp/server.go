package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/ganot/sharedlist/internal/domain/list"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListResolver resolves a list from its capability token.
type ListResolver interface {
	Resolve(ctx context.Context, token string) (*list.List, error)
}

// Dispatcher executes store methods against a resolved list. The RPC
// handler satisfies it, so both surfaces share one code path.
type Dispatcher interface {
	Handle(ctx context.Context, l *list.List, actor, method string, params json.RawMessage) (any, error)
}

// Config contains server configuration.
type Config struct {
	Lists      ListResolver
	Dispatcher Dispatcher
	Version    string
	Logger     *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sharedlist",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(participantMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &tools{lists: cfg.Lists, dispatcher: cfg.Dispatcher})

	return server
}
