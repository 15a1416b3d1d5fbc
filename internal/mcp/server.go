package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Version is reported in the MCP implementation info.
const Version = "0.1.0"

// Config contains server configuration.
type Config struct {
	Handler          *Handler
	Resolver         PrincipalResolver
	AuthEnabled      bool
	TransportMode    string // "stdio" or "http"
	DefaultPrincipal ledger.Principal
	Clock            ledger.Clock
	Logger           *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sciledger",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth (local use only)
	identity := noAuthMiddleware(cfg.DefaultPrincipal, cfg.Clock)
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		identity = authMiddleware(cfg.Resolver, cfg.Clock)
	}
	server.AddReceivingMiddleware(identity, trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Handler)

	return server
}
