package project

import (
	"context"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) (uint64, error)
	Get(ctx context.Context, id uint64) (*Project, error)
	AddCollaborator(ctx context.Context, id uint64, collaborator ledger.Principal) error
	UpdateStatus(ctx context.Context, id uint64, status Status) error
	UpdateDataHash(ctx context.Context, id uint64, hash ledger.Digest) error
	Count(ctx context.Context) (uint64, error)
}

// Journal records committed project mutations.
type Journal interface {
	Append(ctx context.Context, ev journal.Event) (*journal.Entry, error)
}
