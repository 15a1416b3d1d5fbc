package provenance

import (
	"time"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Kind distinguishes the two independently numbered data registries
type Kind string

const (
	KindTelescope Kind = "telescope"
	KindProbe     Kind = "probe"
)

// Valid reports whether k is a known data kind.
func (k Kind) Valid() bool {
	return k == KindTelescope || k == KindProbe
}

// Entry is an immutable provenance record for a batch of observations
type Entry struct {
	ID        uint64           `json:"id"`
	Kind      Kind             `json:"kind"`
	SourceID  string           `json:"source_id"`
	Submitter ledger.Principal `json:"submitter"`
	Timestamp time.Time        `json:"timestamp"`
	DataHash  ledger.Digest    `json:"data_hash"`
	Metadata  string           `json:"metadata"`
}
