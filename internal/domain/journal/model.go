package journal

import (
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Registry names used in journal entries.
const (
	RegistryProjects   = "projects"
	RegistryReviews    = "reviews"
	RegistryFunding    = "funding"
	RegistryProvenance = "provenance"
)

// Event describes a committed mutation before it is chained.
type Event struct {
	Registry  string
	Operation string
	EntityID  uint64
}

// Entry is one link of the hash-chained journal
type Entry struct {
	Seq       uint64           `json:"seq"`
	CallID    string           `json:"call_id"`
	Registry  string           `json:"registry"`
	Operation string           `json:"operation"`
	Principal ledger.Principal `json:"principal"`
	EntityID  uint64           `json:"entity_id"`
	At        time.Time        `json:"at"`
	PrevHash  ledger.Digest    `json:"prev_hash"`
	Hash      ledger.Digest    `json:"hash"`
}

// Head identifies the tip of the journal.
type Head struct {
	Length uint64        `json:"length"`
	Hash   ledger.Digest `json:"hash"`
}
