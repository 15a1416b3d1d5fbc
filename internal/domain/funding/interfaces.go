package funding

import (
	"context"
	"time"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/ledger"
)

// Repository provides persistence for campaigns and escrow.
//
// Fund credits the campaign only while it is active and the new total stays
// within MaxAmount; Close applies only while the campaign is active and
// settles against the raised total it commits with; Refund applies only to
// an unrefunded contribution of a failed campaign. Each returns repository.ErrConflict when its guard
// fails and applies all of its writes or none.
type Repository interface {
	Create(ctx context.Context, c *Campaign) (uint64, error)
	Get(ctx context.Context, id uint64) (*Campaign, error)
	Fund(ctx context.Context, t Transfer) error
	Close(ctx context.Context, id uint64, at time.Time) (*Settlement, error)
	Refund(ctx context.Context, t Transfer) error
	GetContribution(ctx context.Context, campaignID uint64, contributor ledger.Principal) (*Contribution, error)
	ListContributions(ctx context.Context, campaignID uint64) ([]Contribution, error)
	Count(ctx context.Context) (uint64, error)
}

// ProjectReader loads the funded project.
type ProjectReader interface {
	Get(ctx context.Context, id uint64) (*project.Project, error)
}

// Journal records committed funding mutations.
type Journal interface {
	Append(ctx context.Context, ev journal.Event) (*journal.Entry, error)
}
