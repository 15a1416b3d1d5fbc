package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

const campaignCounter = "campaigns"

// CampaignRepository implements funding.Repository for SQLite
type CampaignRepository struct {
	db *DB
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create allocates the next campaign id and stores the campaign
func (r *CampaignRepository) Create(ctx context.Context, c *funding.Campaign) (uint64, error) {
	var id uint64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, campaignCounter); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO campaigns (id, project_id, goal, raised, escrow_balance, status, beneficiary, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			int64(id),
			int64(c.ProjectID),
			int64(c.Goal),
			int64(c.Raised),
			int64(c.EscrowBalance),
			string(c.Status),
			string(c.Beneficiary),
			c.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if err != nil {
			return fmt.Errorf("failed to create campaign: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves a campaign by ID
func (r *CampaignRepository) Get(ctx context.Context, id uint64) (*funding.Campaign, error) {
	var (
		c                                      funding.Campaign
		rawID, projectID, goal, raised, escrow int64
		status, beneficiary                    string
		closedAt                               sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, goal, raised, escrow_balance, status, beneficiary, created_at, closed_at
		FROM campaigns
		WHERE id = ?
	`, int64(id)).Scan(&rawID, &projectID, &goal, &raised, &escrow, &status, &beneficiary, &c.CreatedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	c.ID = uint64(rawID)
	c.ProjectID = uint64(projectID)
	c.Goal = uint64(goal)
	c.Raised = uint64(raised)
	c.EscrowBalance = uint64(escrow)
	c.Status = funding.Status(status)
	c.Beneficiary = ledger.Principal(beneficiary)
	c.CreatedAt = c.CreatedAt.UTC()
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		c.ClosedAt = &t
	}
	return &c, nil
}

// Fund credits an active campaign, the contributor's running total and the
// escrow ledger in one transaction
func (r *CampaignRepository) Fund(ctx context.Context, t funding.Transfer) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE campaigns
			SET raised = raised + ?, escrow_balance = escrow_balance + ?
			WHERE id = ? AND status = 'active' AND raised <= ?
		`, int64(t.Amount), int64(t.Amount), int64(t.CampaignID), int64(funding.MaxAmount-t.Amount))
		if err != nil {
			return fmt.Errorf("failed to credit campaign: %w", err)
		}
		if err := checkAffected(result, repository.ErrConflict); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO contributions (campaign_id, contributor, amount, refunded, first_at, seq)
			VALUES (?, ?, ?, 0, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM contributions WHERE campaign_id = ?))
			ON CONFLICT (campaign_id, contributor) DO UPDATE SET amount = amount + excluded.amount
		`, int64(t.CampaignID), string(t.Principal), int64(t.Amount), t.At, int64(t.CampaignID))
		if err != nil {
			return fmt.Errorf("failed to record contribution: %w", err)
		}

		return insertTransfer(ctx, tx, t)
	})
}

// Close settles an active campaign against the raised total it commits
// with. It returns repository.ErrConflict once the campaign has left active.
func (r *CampaignRepository) Close(ctx context.Context, id uint64, at time.Time) (*funding.Settlement, error) {
	var settled *funding.Settlement
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var (
			status       string
			raised, goal int64
		)
		err := tx.QueryRowContext(ctx, `
			UPDATE campaigns
			SET status = CASE WHEN raised >= goal THEN 'successful' ELSE 'failed' END,
				closed_at = ?
			WHERE id = ? AND status = 'active'
			RETURNING status, raised, goal
		`, at.UTC(), int64(id)).Scan(&status, &raised, &goal)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to close campaign: %w", err)
		}
		settled = &funding.Settlement{Status: funding.Status(status), Raised: uint64(raised), Goal: uint64(goal)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// Refund marks a contribution refunded and releases it from escrow
func (r *CampaignRepository) Refund(ctx context.Context, t funding.Transfer) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE contributions SET refunded = 1
			WHERE campaign_id = ? AND contributor = ? AND refunded = 0 AND amount = ?
		`, int64(t.CampaignID), string(t.Principal), int64(t.Amount))
		if err != nil {
			return fmt.Errorf("failed to mark refund: %w", err)
		}
		if err := checkAffected(result, repository.ErrConflict); err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE campaigns SET escrow_balance = escrow_balance - ?
			WHERE id = ? AND status = 'failed' AND escrow_balance >= ?
		`, int64(t.Amount), int64(t.CampaignID), int64(t.Amount))
		if err != nil {
			return fmt.Errorf("failed to debit escrow: %w", err)
		}
		if err := checkAffected(result, repository.ErrConflict); err != nil {
			return err
		}

		return insertTransfer(ctx, tx, t)
	})
}

// GetContribution retrieves one contributor's record for a campaign
func (r *CampaignRepository) GetContribution(ctx context.Context, campaignID uint64, contributor ledger.Principal) (*funding.Contribution, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT campaign_id, contributor, amount, refunded, first_at
		FROM contributions
		WHERE campaign_id = ? AND contributor = ?
	`, int64(campaignID), string(contributor))

	c, err := scanContribution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// ListContributions returns a campaign's contributions in first-contribution order
func (r *CampaignRepository) ListContributions(ctx context.Context, campaignID uint64) ([]funding.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT campaign_id, contributor, amount, refunded, first_at
		FROM contributions
		WHERE campaign_id = ?
		ORDER BY seq
	`, int64(campaignID))
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	list := []funding.Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		list = append(list, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return list, nil
}

// Count returns the number of campaign ids allocated
func (r *CampaignRepository) Count(ctx context.Context) (uint64, error) {
	return counterValue(ctx, r.db, campaignCounter)
}

func insertTransfer(ctx context.Context, tx *sql.Tx, t funding.Transfer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO escrow_transfers (campaign_id, kind, principal, amount, call_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, int64(t.CampaignID), string(t.Kind), string(t.Principal), int64(t.Amount), t.CallID, t.At)
	if err != nil {
		return fmt.Errorf("failed to record escrow transfer: %w", err)
	}
	return nil
}

func scanContribution(s scanner) (*funding.Contribution, error) {
	var (
		c                  funding.Contribution
		campaignID, amount int64
		contributor        string
		refunded           int
		firstAt            time.Time
	)
	if err := s.Scan(&campaignID, &contributor, &amount, &refunded, &firstAt); err != nil {
		return nil, err
	}
	c.CampaignID = uint64(campaignID)
	c.Contributor = ledger.Principal(contributor)
	c.Amount = uint64(amount)
	c.Refunded = refunded != 0
	c.FirstAt = firstAt.UTC()
	return &c, nil
}
