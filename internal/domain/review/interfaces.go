package review

import (
	"context"

	"github.com/rpggio/sciledger/internal/domain/journal"
)

// Repository provides persistence for reviews.
type Repository interface {
	Create(ctx context.Context, rev *Review) (uint64, error)
	Get(ctx context.Context, id uint64) (*Review, error)
	UpdateStatus(ctx context.Context, id uint64, status Status) error
	ListByProject(ctx context.Context, projectID uint64) ([]Review, error)
	Count(ctx context.Context) (uint64, error)
}

// ProjectReader checks project existence.
type ProjectReader interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// Journal records committed review mutations.
type Journal interface {
	Append(ctx context.Context, ev journal.Event) (*journal.Entry, error)
}
