package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/sciledger/internal/ledger"
)

// metaPrincipalKey lets unauthenticated local clients act as a named principal.
const metaPrincipalKey = "principal"

// PrincipalResolver resolves a principal from a bearer token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (ledger.Principal, error)
}

func skipsIdentity(method string) bool {
	return method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/")
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver PrincipalResolver, clock ledger.Clock) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if skipsIdentity(method) {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			principal, err := resolver.ResolvePrincipal(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if !principal.Valid() {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = ledger.WithCaller(ctx, ledger.NewCaller(principal, clock))
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware attaches the default principal, or the one named in
// _meta.principal, when auth is disabled.
func noAuthMiddleware(defaultPrincipal ledger.Principal, clock ledger.Clock) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if skipsIdentity(method) {
				return next(ctx, method, req)
			}

			principal := defaultPrincipal
			if p := ledger.Principal(metaString(req, metaPrincipalKey)); p.Valid() {
				principal = p
			}

			ctx = ledger.WithCaller(ctx, ledger.NewCaller(principal, clock))
			return next(ctx, method, req)
		}
	}
}

// metaString reads a string from request _meta.
// Some notifications (like "initialized") have nil params, and GetMeta can
// panic on a nil underlying value, so access is guarded.
func metaString(req sdkmcp.Request, key string) (value string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()
	params := req.GetParams()
	if params == nil {
		return ""
	}
	if meta := params.GetMeta(); meta != nil {
		value, _ = meta[key].(string)
	}
	return value
}
