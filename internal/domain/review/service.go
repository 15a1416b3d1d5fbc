package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// Service handles peer review operations.
type Service struct {
	repo     Repository
	projects ProjectReader
	journal  Journal
	logger   *slog.Logger
}

// NewService creates a new review service.
func NewService(repo Repository, projects ProjectReader, journal Journal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, projects: projects, journal: journal, logger: logger}
}

// SubmitRequest defines review submission inputs.
type SubmitRequest struct {
	ProjectID uint64
	Score     int64
	Comment   string
}

// Submit records a review authored by the caller.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Review, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("checking project: %w", err)
	}
	if !exists {
		return nil, ErrProjectNotFound
	}
	if req.Score < MinScore || req.Score > MaxScore {
		return nil, ErrInvalidScore
	}

	rev := &Review{
		ProjectID: req.ProjectID,
		Reviewer:  caller.Principal,
		Score:     int(req.Score),
		Comment:   req.Comment,
		Status:    StatusSubmitted,
		CreatedAt: caller.At,
	}
	id, err := s.repo.Create(ctx, rev)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("creating review: %w", err)
	}
	rev.ID = id

	s.logger.Info("review submitted", "review_id", id, "project_id", req.ProjectID, "score", rev.Score)
	s.record(ctx, "submit-review", id)
	return rev, nil
}

// UpdateStatus overwrites the review status. Only the reviewer may do this.
func (s *Service) UpdateStatus(ctx context.Context, id uint64, status Status) error {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return err
	}

	rev, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("loading review: %w", err)
	}
	if rev.Reviewer != caller.Principal {
		return ErrUnauthorized
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("updating review status: %w", err)
	}

	s.logger.Info("review status updated", "review_id", id, "status", status)
	s.record(ctx, "update-review-status", id)
	return nil
}

// Get fetches a review by ID. Unknown ids return nil without error.
func (s *Service) Get(ctx context.Context, id uint64) (*Review, error) {
	rev, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting review: %w", err)
	}
	return rev, nil
}

// ProjectReviews summarizes the reviews of a project, or nil if it has none.
func (s *Service) ProjectReviews(ctx context.Context, projectID uint64) (*Summary, error) {
	reviews, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project reviews: %w", err)
	}
	return Summarize(reviews), nil
}

// Count returns the number of reviews ever submitted.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) record(ctx context.Context, operation string, id uint64) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Event{
		Registry:  journal.RegistryReviews,
		Operation: operation,
		EntityID:  id,
	}); err != nil {
		s.logger.Warn("journal append failed", "operation", operation, "review_id", id, "error", err)
	}
}
