package provenance

import (
	"context"

	"github.com/rpggio/sciledger/internal/domain/journal"
)

// Repository provides persistence for data entries. Ids are allocated per kind.
type Repository interface {
	Create(ctx context.Context, e *Entry) (uint64, error)
	Get(ctx context.Context, kind Kind, id uint64) (*Entry, error)
	Count(ctx context.Context, kind Kind) (uint64, error)
}

// Journal records committed submissions.
type Journal interface {
	Append(ctx context.Context, ev journal.Event) (*journal.Entry, error)
}
