package provenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// Service handles telescope and probe data submissions.
type Service struct {
	repo    Repository
	journal Journal
	logger  *slog.Logger
}

// NewService creates a new provenance service.
func NewService(repo Repository, journal Journal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, journal: journal, logger: logger}
}

// SubmitRequest defines data submission inputs.
type SubmitRequest struct {
	SourceID string
	DataHash ledger.Digest
	Metadata string
}

// Submit records a data entry of the given kind, stamped with the call time.
func (s *Service) Submit(ctx context.Context, kind Kind, req SubmitRequest) (*Entry, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	e := &Entry{
		Kind:      kind,
		SourceID:  req.SourceID,
		Submitter: caller.Principal,
		Timestamp: caller.At,
		DataHash:  req.DataHash,
		Metadata:  req.Metadata,
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("submitting %s data: %w", kind, err)
	}
	e.ID = id

	s.logger.Info("data submitted", "kind", kind, "entry_id", id, "source_id", req.SourceID)
	s.record(ctx, "submit-"+string(kind)+"-data", id)
	return e, nil
}

// Get fetches an entry. Unknown ids return nil without error.
func (s *Service) Get(ctx context.Context, kind Kind, id uint64) (*Entry, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	e, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s data: %w", kind, err)
	}
	return e, nil
}

// Count returns the number of entries of kind ever submitted.
func (s *Service) Count(ctx context.Context, kind Kind) (uint64, error) {
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}
	return s.repo.Count(ctx, kind)
}

func (s *Service) record(ctx context.Context, operation string, id uint64) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Event{
		Registry:  journal.RegistryProvenance,
		Operation: operation,
		EntityID:  id,
	}); err != nil {
		s.logger.Warn("journal append failed", "operation", operation, "entry_id", id, "error", err)
	}
}
