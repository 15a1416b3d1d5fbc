package project

import (
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Status represents the lifecycle status of a research project
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the known project statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusSuspended:
		return true
	}
	return false
}

// Project represents a research project and its team
type Project struct {
	ID             uint64             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	LeadResearcher ledger.Principal   `json:"lead_researcher"`
	Collaborators  []ledger.Principal `json:"collaborators"`
	Status         Status             `json:"status"`
	DataHash       ledger.Digest      `json:"data_hash"`
	CreatedAt      time.Time          `json:"created_at"`
}

// IsLead reports whether principal is the project's lead researcher.
func (p *Project) IsLead(principal ledger.Principal) bool {
	return p.LeadResearcher == principal
}

// HasCollaborator reports whether principal is already on the team.
func (p *Project) HasCollaborator(principal ledger.Principal) bool {
	for _, c := range p.Collaborators {
		if c == principal {
			return true
		}
	}
	return false
}
