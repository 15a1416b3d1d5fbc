package mocks

import (
	"context"
	"time"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) (uint64, error) {
	args := m.Called(ctx, proj)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *ProjectRepository) Get(ctx context.Context, id uint64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) AddCollaborator(ctx context.Context, id uint64, collaborator ledger.Principal) error {
	args := m.Called(ctx, id, collaborator)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateStatus(ctx context.Context, id uint64, status project.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateDataHash(ctx context.Context, id uint64, hash ledger.Digest) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *ProjectRepository) Count(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// ReviewRepository is a mock for review.Repository.
type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) Create(ctx context.Context, rev *review.Review) (uint64, error) {
	args := m.Called(ctx, rev)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *ReviewRepository) Get(ctx context.Context, id uint64) (*review.Review, error) {
	args := m.Called(ctx, id)
	if rev, ok := args.Get(0).(*review.Review); ok {
		return rev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReviewRepository) UpdateStatus(ctx context.Context, id uint64, status review.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ReviewRepository) ListByProject(ctx context.Context, projectID uint64) ([]review.Review, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]review.Review); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReviewRepository) Count(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// CampaignRepository is a mock for funding.Repository.
type CampaignRepository struct {
	mock.Mock
}

func (m *CampaignRepository) Create(ctx context.Context, c *funding.Campaign) (uint64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *CampaignRepository) Get(ctx context.Context, id uint64) (*funding.Campaign, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*funding.Campaign); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) Fund(ctx context.Context, t funding.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *CampaignRepository) Close(ctx context.Context, id uint64, at time.Time) (*funding.Settlement, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funding.Settlement), args.Error(1)
}

func (m *CampaignRepository) Refund(ctx context.Context, t funding.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *CampaignRepository) GetContribution(ctx context.Context, campaignID uint64, contributor ledger.Principal) (*funding.Contribution, error) {
	args := m.Called(ctx, campaignID, contributor)
	if c, ok := args.Get(0).(*funding.Contribution); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) ListContributions(ctx context.Context, campaignID uint64) ([]funding.Contribution, error) {
	args := m.Called(ctx, campaignID)
	if list, ok := args.Get(0).([]funding.Contribution); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) Count(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// DataRepository is a mock for provenance.Repository.
type DataRepository struct {
	mock.Mock
}

func (m *DataRepository) Create(ctx context.Context, e *provenance.Entry) (uint64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *DataRepository) Get(ctx context.Context, kind provenance.Kind, id uint64) (*provenance.Entry, error) {
	args := m.Called(ctx, kind, id)
	if e, ok := args.Get(0).(*provenance.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DataRepository) Count(ctx context.Context, kind provenance.Kind) (uint64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(uint64), args.Error(1)
}

// Journal is a mock for the journal appender the domain services share.
type Journal struct {
	mock.Mock
}

func (m *Journal) Append(ctx context.Context, ev journal.Event) (*journal.Entry, error) {
	args := m.Called(ctx, ev)
	if e, ok := args.Get(0).(*journal.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
