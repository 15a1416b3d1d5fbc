package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

const reviewCounter = "reviews"

// ReviewRepository implements review.Repository for SQLite
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create allocates the next review id and stores the review
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) (uint64, error) {
	var id uint64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, reviewCounter); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (id, project_id, reviewer, score, comment, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			int64(id),
			int64(rev.ProjectID),
			string(rev.Reviewer),
			rev.Score,
			rev.Comment,
			string(rev.Status),
			rev.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves a review by ID
func (r *ReviewRepository) Get(ctx context.Context, id uint64) (*review.Review, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, reviewer, score, comment, status, created_at
		FROM reviews
		WHERE id = ?
	`, int64(id))

	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rev, nil
}

// UpdateStatus overwrites the review status
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uint64, status review.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE reviews SET status = ? WHERE id = ?`, string(status), int64(id))
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	return checkAffected(result, repository.ErrNotFound)
}

// ListByProject returns a project's reviews in submission order
func (r *ReviewRepository) ListByProject(ctx context.Context, projectID uint64) ([]review.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, reviewer, score, comment, status, created_at
		FROM reviews
		WHERE project_id = ?
		ORDER BY id
	`, int64(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []review.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// Count returns the number of review ids allocated
func (r *ReviewRepository) Count(ctx context.Context) (uint64, error) {
	return counterValue(ctx, r.db, reviewCounter)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (*review.Review, error) {
	var (
		rev                  review.Review
		id, projectID        int64
		reviewerName, status string
	)
	if err := s.Scan(&id, &projectID, &reviewerName, &rev.Score, &rev.Comment, &status, &rev.CreatedAt); err != nil {
		return nil, err
	}
	rev.ID = uint64(id)
	rev.ProjectID = uint64(projectID)
	rev.Reviewer = ledger.Principal(reviewerName)
	rev.Status = review.Status(status)
	rev.CreatedAt = rev.CreatedAt.UTC()
	return &rev, nil
}
