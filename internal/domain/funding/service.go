package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// Service handles campaign and escrow operations.
type Service struct {
	repo     Repository
	projects ProjectReader
	journal  Journal
	logger   *slog.Logger
}

// NewService creates a new funding service.
func NewService(repo Repository, projects ProjectReader, journal Journal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, projects: projects, journal: journal, logger: logger}
}

// CreateRequest defines campaign creation inputs.
type CreateRequest struct {
	ProjectID uint64
	Goal      uint64
}

// Create opens a campaign whose beneficiary is the project's lead researcher.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Campaign, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	proj, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if req.Goal == 0 || req.Goal > MaxAmount {
		return nil, ErrInvalidGoal
	}

	c := &Campaign{
		ProjectID:   req.ProjectID,
		Goal:        req.Goal,
		Status:      StatusActive,
		Beneficiary: proj.LeadResearcher,
		CreatedAt:   caller.At,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}
	c.ID = id

	s.logger.Info("campaign created", "campaign_id", id, "project_id", req.ProjectID, "goal", req.Goal)
	s.record(ctx, "create-funding-campaign", id)
	return c, nil
}

// Fund moves amount from the caller into the campaign's escrow.
func (s *Service) Fund(ctx context.Context, id uint64, amount uint64) error {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive {
		return ErrCampaignNotActive
	}
	if amount == 0 || amount > MaxAmount || c.Raised > MaxAmount-amount {
		return ErrInvalidAmount
	}

	err = s.repo.Fund(ctx, Transfer{
		CampaignID: id,
		Kind:       TransferFund,
		Principal:  caller.Principal,
		Amount:     amount,
		CallID:     caller.CallID,
		At:         caller.At,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.classifyFundConflict(ctx, id, amount)
		}
		return fmt.Errorf("funding campaign: %w", err)
	}

	s.logger.Info("campaign funded", "campaign_id", id, "contributor", caller.Principal, "amount", amount)
	s.record(ctx, "fund-campaign", id)
	return nil
}

// Close settles an active campaign. Only the beneficiary may close it.
func (s *Service) Close(ctx context.Context, id uint64) (Status, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return "", err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if c.Beneficiary != caller.Principal {
		return "", ErrUnauthorized
	}
	if c.Status != StatusActive {
		return "", ErrCampaignNotActive
	}

	settled, err := s.repo.Close(ctx, id, caller.At)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", ErrCampaignNotActive
		}
		return "", fmt.Errorf("closing campaign: %w", err)
	}

	s.logger.Info("campaign closed", "campaign_id", id, "status", settled.Status, "raised", settled.Raised, "goal", settled.Goal)
	s.record(ctx, "close-campaign", id)
	return settled.Status, nil
}

// ClaimRefund returns the caller's contribution from a failed campaign's escrow.
func (s *Service) ClaimRefund(ctx context.Context, id uint64) (uint64, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return 0, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if c.Status != StatusFailed {
		return 0, fmt.Errorf("campaign is %s: %w", c.Status, ErrInvalidTransition)
	}

	contrib, err := s.repo.GetContribution(ctx, id, caller.Principal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrContributionNotFound
		}
		return 0, fmt.Errorf("loading contribution: %w", err)
	}
	if contrib.Refunded {
		return 0, ErrAlreadyRefunded
	}

	err = s.repo.Refund(ctx, Transfer{
		CampaignID: id,
		Kind:       TransferRefund,
		Principal:  caller.Principal,
		Amount:     contrib.Amount,
		CallID:     caller.CallID,
		At:         caller.At,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, ErrAlreadyRefunded
		}
		return 0, fmt.Errorf("refunding contribution: %w", err)
	}

	s.logger.Info("contribution refunded", "campaign_id", id, "contributor", caller.Principal, "amount", contrib.Amount)
	s.record(ctx, "claim-refund", id)
	return contrib.Amount, nil
}

// Get fetches a campaign by ID. Unknown ids return nil without error.
func (s *Service) Get(ctx context.Context, id uint64) (*Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting campaign: %w", err)
	}
	return c, nil
}

// GetContribution returns a contributor's record, or nil if there is none.
func (s *Service) GetContribution(ctx context.Context, id uint64, contributor ledger.Principal) (*Contribution, error) {
	contrib, err := s.repo.GetContribution(ctx, id, contributor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting contribution: %w", err)
	}
	return contrib, nil
}

// Contributions lists a campaign's contributions in first-contribution order.
func (s *Service) Contributions(ctx context.Context, id uint64) ([]Contribution, error) {
	list, err := s.repo.ListContributions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing contributions: %w", err)
	}
	return list, nil
}

// Count returns the number of campaigns ever created.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) load(ctx context.Context, id uint64) (*Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("loading campaign: %w", err)
	}
	return c, nil
}

func (s *Service) classifyFundConflict(ctx context.Context, id uint64, amount uint64) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive {
		return ErrCampaignNotActive
	}
	if c.Raised > MaxAmount-amount {
		return ErrInvalidAmount
	}
	return ErrConflict
}

func (s *Service) record(ctx context.Context, operation string, id uint64) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Event{
		Registry:  journal.RegistryFunding,
		Operation: operation,
		EntityID:  id,
	}); err != nil {
		s.logger.Warn("journal append failed", "operation", operation, "campaign_id", id, "error", err)
	}
}
