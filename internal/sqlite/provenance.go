package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// DataRepository implements provenance.Repository for SQLite
type DataRepository struct {
	db *DB
}

// NewDataRepository creates a new DataRepository
func NewDataRepository(db *DB) *DataRepository {
	return &DataRepository{db: db}
}

func dataCounter(kind provenance.Kind) string {
	return string(kind) + "_data"
}

// Create allocates the next id for the entry's kind and stores it
func (r *DataRepository) Create(ctx context.Context, e *provenance.Entry) (uint64, error) {
	var id uint64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, dataCounter(e.Kind)); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO data_entries (kind, id, source_id, submitter, timestamp, data_hash, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			string(e.Kind),
			int64(id),
			e.SourceID,
			string(e.Submitter),
			e.Timestamp,
			e.DataHash,
			e.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to create data entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves a data entry by kind and ID
func (r *DataRepository) Get(ctx context.Context, kind provenance.Kind, id uint64) (*provenance.Entry, error) {
	var (
		e         provenance.Entry
		rawID     int64
		submitter string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source_id, submitter, timestamp, data_hash, metadata
		FROM data_entries
		WHERE kind = ? AND id = ?
	`, string(kind), int64(id)).Scan(&rawID, &e.SourceID, &submitter, &e.Timestamp, &e.DataHash, &e.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data entry: %w", err)
	}

	e.ID = uint64(rawID)
	e.Kind = kind
	e.Submitter = ledger.Principal(submitter)
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}

// Count returns the number of ids allocated for kind
func (r *DataRepository) Count(ctx context.Context, kind provenance.Kind) (uint64, error) {
	return counterValue(ctx, r.db, dataCounter(kind))
}
