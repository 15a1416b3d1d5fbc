package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo    Repository
	journal Journal
	logger  *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, journal Journal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, journal: journal, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Title       string
	Description string
}

// Create registers a project led by the caller.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	proj := &Project{
		Title:          req.Title,
		Description:    req.Description,
		LeadResearcher: caller.Principal,
		Collaborators:  []ledger.Principal{caller.Principal},
		Status:         StatusActive,
		CreatedAt:      caller.At,
	}

	id, err := s.repo.Create(ctx, proj)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	proj.ID = id

	s.logger.Info("project created", "project_id", id, "lead", caller.Principal)
	s.record(ctx, "create-project", id)
	return proj, nil
}

// AddCollaborator adds collaborator to the team. Adding an existing member is a no-op.
func (s *Service) AddCollaborator(ctx context.Context, id uint64, collaborator ledger.Principal) error {
	proj, err := s.authorizeLead(ctx, id)
	if err != nil {
		return err
	}
	if proj.HasCollaborator(collaborator) {
		return nil
	}

	if err := s.repo.AddCollaborator(ctx, id, collaborator); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("adding collaborator: %w", err)
	}

	s.logger.Info("collaborator added", "project_id", id, "collaborator", collaborator)
	s.record(ctx, "add-collaborator", id)
	return nil
}

// UpdateStatus overwrites the project status.
func (s *Service) UpdateStatus(ctx context.Context, id uint64, status Status) error {
	if _, err := s.authorizeLead(ctx, id); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("updating project status: %w", err)
	}

	s.logger.Info("project status updated", "project_id", id, "status", status)
	s.record(ctx, "update-project-status", id)
	return nil
}

// UpdateData overwrites the project's data digest. dataHash is parsed only
// after the caller is known to lead the project.
func (s *Service) UpdateData(ctx context.Context, id uint64, dataHash string) error {
	if _, err := s.authorizeLead(ctx, id); err != nil {
		return err
	}
	hash, err := ledger.ParseDigest(dataHash)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateDataHash(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("updating project data: %w", err)
	}

	s.logger.Info("project data updated", "project_id", id, "data_hash", hash.String())
	s.record(ctx, "update-project-data", id)
	return nil
}

// Get fetches a project by ID. Unknown ids return nil without error.
func (s *Service) Get(ctx context.Context, id uint64) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// Count returns the number of projects ever created.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) authorizeLead(ctx context.Context, id uint64) (*Project, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}

	if !proj.IsLead(caller.Principal) {
		return nil, ErrUnauthorized
	}
	return proj, nil
}

func (s *Service) record(ctx context.Context, operation string, id uint64) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Event{
		Registry:  journal.RegistryProjects,
		Operation: operation,
		EntityID:  id,
	}); err != nil {
		s.logger.Warn("journal append failed", "operation", operation, "project_id", id, "error", err)
	}
}
