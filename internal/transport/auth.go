package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rpggio/sciledger/internal/ledger"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// PrincipalResolver resolves the acting principal from a bearer token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (ledger.Principal, error)
}

// AuthMiddleware enforces bearer token authentication and attaches the
// resolved caller to the request context.
func AuthMiddleware(resolver PrincipalResolver, clock ledger.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil || !principal.Valid() {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := ledger.WithCaller(r.Context(), ledger.NewCaller(principal, clock))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultPrincipalMiddleware attaches a fixed principal when auth is disabled.
func DefaultPrincipalMiddleware(principal ledger.Principal, clock ledger.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ledger.WithCaller(r.Context(), ledger.NewCaller(principal, clock))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// APIKeyStore looks up principals bound to API keys.
type APIKeyStore interface {
	Lookup(ctx context.Context, token string) (ledger.Principal, error)
}

// APIKeyResolver resolves principals from stored API keys.
type APIKeyResolver struct {
	Store APIKeyStore
}

func (r APIKeyResolver) ResolvePrincipal(ctx context.Context, token string) (ledger.Principal, error) {
	principal, err := r.Store.Lookup(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return principal, nil
}

// Claims are the JWT claims accepted as ledger identities. The subject
// names the principal.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTResolver validates HS256 tokens and resolves their subject.
type JWTResolver struct {
	signingKey []byte
	issuer     string
}

// NewJWTResolver creates a resolver for tokens signed with key. An empty
// issuer accepts any issuer.
func NewJWTResolver(key, issuer string) *JWTResolver {
	return &JWTResolver{signingKey: []byte(key), issuer: issuer}
}

// Issue signs a token for principal valid for ttl.
func (r *JWTResolver) Issue(principal ledger.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(principal),
			Issuer:    r.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(r.signingKey)
}

func (r *JWTResolver) ResolvePrincipal(_ context.Context, tokenString string) (ledger.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return r.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token has expired", ErrUnauthorized)
		}
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	principal := ledger.Principal(claims.Subject)
	if !principal.Valid() {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return principal, nil
}

// ChainResolver tries each resolver in order and returns the first match.
type ChainResolver []PrincipalResolver

func (c ChainResolver) ResolvePrincipal(ctx context.Context, token string) (ledger.Principal, error) {
	for _, resolver := range c {
		principal, err := resolver.ResolvePrincipal(ctx, token)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return "", err
		}
	}
	return "", ErrUnauthorized
}
