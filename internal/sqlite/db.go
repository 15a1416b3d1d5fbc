package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"

	"github.com/rpggio/sciledger/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection.
// The pool is limited to one connection so every call sees the same
// database (including ":memory:") and writes are serialized.
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies every embedded *.up.sql file in name order.
// The scripts are idempotent so this is safe on every startup.
func (db *DB) RunMigrations() error {
	names, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nextID advances the named counter and returns its new value.
// It must run in the same transaction as the insert that uses the id.
func nextID(ctx context.Context, tx *sql.Tx, counter string) (uint64, error) {
	result, err := tx.ExecContext(ctx, `UPDATE counters SET value = value + 1 WHERE name = ?`, counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s counter: %w", counter, err)
	}
	if rows, err := result.RowsAffected(); err != nil || rows == 0 {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
	return counterValue(ctx, tx, counter)
}

func counterValue(ctx context.Context, q queryer, counter string) (uint64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, counter).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s counter: %w", counter, err)
	}
	return uint64(value), nil
}

// checkAffected maps an update that touched no row to errNone.
func checkAffected(result sql.Result, errNone error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errNone
	}
	return nil
}
