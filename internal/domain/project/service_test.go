package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
	"github.com/rpggio/sciledger/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func as(principal ledger.Principal) context.Context {
	return ledger.WithCaller(context.Background(), ledger.Caller{Principal: principal, At: fixedTime, CallID: "call-1"})
}

func TestProjectService_CreateAssignsLead(t *testing.T) {
	ctx := as("alice")

	repo := &mocks.ProjectRepository{}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
		return p.LeadResearcher == "alice" && p.Status == project.StatusActive
	})).Return(uint64(1), nil)

	jr := &mocks.Journal{}
	jr.On("Append", mock.Anything, journal.Event{
		Registry:  journal.RegistryProjects,
		Operation: "create-project",
		EntityID:  1,
	}).Return(&journal.Entry{Seq: 1}, nil)

	svc := project.NewService(repo, jr, nil)
	proj, err := svc.Create(ctx, project.CreateRequest{Title: "Mars Survey", Description: "Spectra"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), proj.ID)
	require.Equal(t, []ledger.Principal{"alice"}, proj.Collaborators)
	require.True(t, proj.DataHash.IsZero())
	require.Equal(t, fixedTime, proj.CreatedAt)
	jr.AssertExpectations(t)
}

func TestProjectService_CreateValidation(t *testing.T) {
	repo := &mocks.ProjectRepository{}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
		return p.Title == "   " && p.Description == ""
	})).Return(uint64(1), nil).Once()
	svc := project.NewService(repo, nil, nil)

	// Titles are free text; blank ones are stored as given.
	proj, err := svc.Create(as("alice"), project.CreateRequest{Title: "   "})
	require.NoError(t, err)
	require.Equal(t, "   ", proj.Title)

	_, err = svc.Create(context.Background(), project.CreateRequest{Title: "x"})
	require.ErrorIs(t, err, ledger.ErrNoCaller)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProjectService_JournalFailureDoesNotFailCall(t *testing.T) {
	repo := &mocks.ProjectRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(uint64(7), nil)
	jr := &mocks.Journal{}
	jr.On("Append", mock.Anything, mock.Anything).Return((*journal.Entry)(nil), errors.New("disk full"))

	svc := project.NewService(repo, jr, nil)
	proj, err := svc.Create(as("alice"), project.CreateRequest{Title: "x"})
	require.NoError(t, err)
	require.Equal(t, uint64(7), proj.ID)
}

func TestProjectService_AddCollaborator(t *testing.T) {
	existing := &project.Project{ID: 1, LeadResearcher: "alice", Collaborators: []ledger.Principal{"alice", "bob"}}

	t.Run("lead adds member", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)
		repo.On("AddCollaborator", mock.Anything, uint64(1), ledger.Principal("carol")).Return(nil)

		svc := project.NewService(repo, nil, nil)
		require.NoError(t, svc.AddCollaborator(as("alice"), 1, "carol"))
		repo.AssertExpectations(t)
	})

	t.Run("existing member is a no-op", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)

		svc := project.NewService(repo, nil, nil)
		require.NoError(t, svc.AddCollaborator(as("alice"), 1, "bob"))
		repo.AssertNotCalled(t, "AddCollaborator", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-lead rejected", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)

		svc := project.NewService(repo, nil, nil)
		err := svc.AddCollaborator(as("bob"), 1, "carol")
		require.ErrorIs(t, err, project.ErrUnauthorized)
	})

	t.Run("unknown project", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", mock.Anything, uint64(9)).Return((*project.Project)(nil), repository.ErrNotFound)

		svc := project.NewService(repo, nil, nil)
		err := svc.AddCollaborator(as("alice"), 9, "carol")
		require.ErrorIs(t, err, project.ErrProjectNotFound)
	})

	t.Run("blank principal is stored as given", func(t *testing.T) {
		repo := &mocks.ProjectRepository{}
		repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)
		repo.On("AddCollaborator", mock.Anything, uint64(1), ledger.Principal("")).Return(nil)

		svc := project.NewService(repo, nil, nil)
		require.NoError(t, svc.AddCollaborator(as("alice"), 1, ""))
		repo.AssertExpectations(t)
	})
}

func TestProjectService_UpdateStatus(t *testing.T) {
	existing := &project.Project{ID: 1, LeadResearcher: "alice", Status: project.StatusActive}

	repo := &mocks.ProjectRepository{}
	repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)
	repo.On("UpdateStatus", mock.Anything, uint64(1), project.StatusCompleted).Return(nil)
	repo.On("UpdateStatus", mock.Anything, uint64(1), project.StatusActive).Return(nil)
	svc := project.NewService(repo, nil, nil)

	require.NoError(t, svc.UpdateStatus(as("alice"), 1, project.StatusCompleted))
	// Any valid status may follow any other.
	require.NoError(t, svc.UpdateStatus(as("alice"), 1, project.StatusActive))
	require.ErrorIs(t, svc.UpdateStatus(as("alice"), 1, project.Status("archived")), project.ErrInvalidStatus)
	require.ErrorIs(t, svc.UpdateStatus(as("mallory"), 1, project.StatusSuspended), project.ErrUnauthorized)
}

func TestProjectService_UpdateData(t *testing.T) {
	existing := &project.Project{ID: 1, LeadResearcher: "alice", Collaborators: []ledger.Principal{"alice", "bob"}}
	digest, err := ledger.ParseDigest("0xabcd")
	require.NoError(t, err)

	repo := &mocks.ProjectRepository{}
	repo.On("Get", mock.Anything, uint64(1)).Return(existing, nil)
	repo.On("UpdateDataHash", mock.Anything, uint64(1), digest).Return(nil)
	svc := project.NewService(repo, nil, nil)

	require.NoError(t, svc.UpdateData(as("alice"), 1, "0xabcd"))
	require.ErrorIs(t, svc.UpdateData(as("bob"), 1, "0xabcd"), project.ErrUnauthorized)
	require.ErrorIs(t, svc.UpdateData(as("alice"), 1, "xyz"), ledger.ErrInvalidDigest)
}

func TestProjectService_UpdateDataChecksCallerBeforeHash(t *testing.T) {
	repo := &mocks.ProjectRepository{}
	repo.On("Get", mock.Anything, uint64(1)).Return(&project.Project{ID: 1, LeadResearcher: "alice"}, nil)
	repo.On("Get", mock.Anything, uint64(9)).Return((*project.Project)(nil), repository.ErrNotFound)
	svc := project.NewService(repo, nil, nil)

	require.ErrorIs(t, svc.UpdateData(as("bob"), 1, "zz"), project.ErrUnauthorized)
	require.ErrorIs(t, svc.UpdateData(as("alice"), 9, "zz"), project.ErrProjectNotFound)
	repo.AssertNotCalled(t, "UpdateDataHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_GetUnknownReturnsNil(t *testing.T) {
	repo := &mocks.ProjectRepository{}
	repo.On("Get", mock.Anything, uint64(42)).Return((*project.Project)(nil), repository.ErrNotFound)

	svc := project.NewService(repo, nil, nil)
	proj, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	require.Nil(t, proj)
}
