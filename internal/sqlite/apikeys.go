package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// APIKeyRepository stores hashed bearer tokens and the principals they act as
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Put registers token for principal, replacing any earlier binding of the same token
func (r *APIKeyRepository) Put(ctx context.Context, token string, principal ledger.Principal, description string) error {
	if token == "" || !principal.Valid() {
		return fmt.Errorf("api key requires a token and principal")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, principal, created_at, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key_hash) DO UPDATE SET principal = excluded.principal, description = excluded.description
	`, HashToken(token), string(principal), time.Now().UTC(), description)
	if err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	return nil
}

// Lookup returns the principal bound to token and records its use
func (r *APIKeyRepository) Lookup(ctx context.Context, token string) (ledger.Principal, error) {
	hash := HashToken(token)

	var principal string
	err := r.db.QueryRowContext(ctx, `SELECT principal FROM api_keys WHERE key_hash = ?`, hash).Scan(&principal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return ledger.Principal(principal), nil
}

// HashToken returns the hex SHA-256 of a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
