package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository_CreateAndList(t *testing.T) {
	db := NewTestDB(t)
	projects := NewProjectRepository(db)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	p1, err := projects.Create(ctx, newProject("alice", "one"))
	require.NoError(t, err)
	p2, err := projects.Create(ctx, newProject("alice", "two"))
	require.NoError(t, err)

	for _, r := range []struct {
		project uint64
		score   int
	}{{p1, 85}, {p2, 40}, {p1, 90}} {
		_, err := repo.Create(ctx, &review.Review{
			ProjectID: r.project,
			Reviewer:  "bob",
			Score:     r.score,
			Comment:   "ok",
			Status:    review.StatusSubmitted,
			CreatedAt: testTime,
		})
		require.NoError(t, err)
	}

	list, err := repo.ListByProject(ctx, p1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, uint64(1), list[0].ID)
	require.Equal(t, uint64(3), list[1].ID)
	require.Equal(t, 90, list[1].Score)

	empty, err := repo.ListByProject(ctx, 99)
	require.NoError(t, err)
	require.Empty(t, empty)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)
}

func TestReviewRepository_UnknownProject(t *testing.T) {
	db := NewTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &review.Review{ProjectID: 5, Reviewer: "bob", Status: review.StatusSubmitted, CreatedAt: testTime})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)

	// The failed insert must not consume an id.
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), count)
}

func TestReviewRepository_UpdateStatus(t *testing.T) {
	db := NewTestDB(t)
	projects := NewProjectRepository(db)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	pid, err := projects.Create(ctx, newProject("alice", "p"))
	require.NoError(t, err)
	id, err := repo.Create(ctx, &review.Review{ProjectID: pid, Reviewer: "bob", Score: 70, Status: review.StatusSubmitted, CreatedAt: testTime})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, id, review.StatusApproved))
	rev, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, review.StatusApproved, rev.Status)

	require.ErrorIs(t, repo.UpdateStatus(ctx, 9, review.StatusApproved), repository.ErrNotFound)
	_, err = repo.Get(ctx, 9)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
