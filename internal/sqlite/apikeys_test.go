package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_PutLookup(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "secret-token", "alice", "laptop"))

	principal, err := repo.Lookup(ctx, "secret-token")
	require.NoError(t, err)
	require.Equal(t, ledger.Principal("alice"), principal)

	var stored string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT key_hash FROM api_keys`).Scan(&stored))
	require.NotEqual(t, "secret-token", stored)

	_, err = repo.Lookup(ctx, "wrong")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Put(ctx, "secret-token", "bob", ""))
	principal, err = repo.Lookup(ctx, "secret-token")
	require.NoError(t, err)
	require.Equal(t, ledger.Principal("bob"), principal)

	require.Error(t, repo.Put(ctx, "", "alice", ""))
}
