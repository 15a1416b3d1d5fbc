package funding

import (
	"math"
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
)

// MaxAmount bounds goals, contributions and running totals.
const MaxAmount = uint64(math.MaxInt64)

// Status represents the lifecycle status of a campaign
type Status string

const (
	StatusActive     Status = "active"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the known campaign statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuccessful, StatusFailed:
		return true
	}
	return false
}

// Campaign represents a crowdfunding campaign for a project
type Campaign struct {
	ID            uint64           `json:"id"`
	ProjectID     uint64           `json:"project_id"`
	Goal          uint64           `json:"goal"`
	Raised        uint64           `json:"raised"`
	EscrowBalance uint64           `json:"escrow_balance"`
	Status        Status           `json:"status"`
	Beneficiary   ledger.Principal `json:"beneficiary"`
	CreatedAt     time.Time        `json:"created_at"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
}

// Contribution is one contributor's running total in a campaign
type Contribution struct {
	CampaignID  uint64           `json:"campaign_id"`
	Contributor ledger.Principal `json:"contributor"`
	Amount      uint64           `json:"amount"`
	Refunded    bool             `json:"refunded"`
	FirstAt     time.Time        `json:"first_at"`
}

// TransferKind distinguishes escrow movements.
type TransferKind string

const (
	TransferFund   TransferKind = "fund"
	TransferRefund TransferKind = "refund"
)

// Transfer describes an escrow movement applied atomically with its
// campaign and contribution updates.
type Transfer struct {
	CampaignID uint64
	Kind       TransferKind
	Principal  ledger.Principal
	Amount     uint64
	CallID     string
	At         time.Time
}

// Settlement is the committed result of closing a campaign. Status is
// successful when Raised reached Goal at commit time and failed otherwise.
type Settlement struct {
	Status Status
	Raised uint64
	Goal   uint64
}
