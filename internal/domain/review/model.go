package review

import (
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Score bounds, inclusive.
const (
	MinScore = 0
	MaxScore = 100
)

// Status represents the moderation status of a review
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is one of the known review statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Review represents a peer review attached to a project
type Review struct {
	ID        uint64           `json:"id"`
	ProjectID uint64           `json:"project_id"`
	Reviewer  ledger.Principal `json:"reviewer"`
	Score     int              `json:"score"`
	Comment   string           `json:"comment"`
	Status    Status           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Summary aggregates the reviews of one project
type Summary struct {
	ReviewIDs    []uint64 `json:"review_ids"`
	AverageScore uint64   `json:"average_score"`
}

// Summarize returns nil for an empty slice. The average counts every review
// regardless of status and truncates toward zero.
func Summarize(reviews []Review) *Summary {
	if len(reviews) == 0 {
		return nil
	}
	summary := &Summary{ReviewIDs: make([]uint64, 0, len(reviews))}
	var total uint64
	for _, r := range reviews {
		summary.ReviewIDs = append(summary.ReviewIDs, r.ID)
		total += uint64(r.Score)
	}
	summary.AverageScore = total / uint64(len(reviews))
	return summary
}
