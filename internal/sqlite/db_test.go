package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var testTime = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"counters",
		"projects",
		"project_collaborators",
		"reviews",
		"campaigns",
		"contributions",
		"escrow_transfers",
		"data_entries",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsIdempotent verifies a restart does not reset counters
func TestMigrationsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `UPDATE counters SET value = 5 WHERE name = 'projects'`)
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations())

	value, err := counterValue(ctx, db, "projects")
	require.NoError(t, err)
	require.Equal(t, uint64(5), value)
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestNextIDRollsBackWithTransaction(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	id, err := nextID(ctx, tx, "reviews")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.NoError(t, tx.Rollback())

	value, err := counterValue(ctx, db, "reviews")
	require.NoError(t, err)
	require.Equal(t, uint64(0), value)
}

func TestNextIDUnknownCounter(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := nextID(ctx, tx, "widgets")
		return err
	})
	require.Error(t, err)
}
