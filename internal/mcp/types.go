package mcp

import "github.com/rpggio/sciledger/internal/ledger"

type NoParams struct{}

type CreateProjectParams struct {
	Title       string `json:"title" jsonschema:"project title, must not be blank"`
	Description string `json:"description" jsonschema:"free-form project description"`
}

type AddCollaboratorParams struct {
	ProjectID    uint64 `json:"project_id" jsonschema:"project id"`
	Collaborator string `json:"collaborator" jsonschema:"principal to add to the team"`
}

type UpdateProjectStatusParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
	NewStatus string `json:"new_status" jsonschema:"one of active, completed, suspended"`
}

type UpdateProjectDataParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
	DataHash  string `json:"data_hash" jsonschema:"hex digest of at most 32 bytes, optional 0x prefix"`
}

type ProjectIDParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"project id"`
}

type SubmitReviewParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"reviewed project id"`
	Score     int64  `json:"score" jsonschema:"integer score from 0 to 100"`
	Comment   string `json:"comment" jsonschema:"review text"`
}

type UpdateReviewStatusParams struct {
	ReviewID  uint64 `json:"review_id" jsonschema:"review id"`
	NewStatus string `json:"new_status" jsonschema:"one of submitted, approved, rejected"`
}

type ReviewIDParams struct {
	ReviewID uint64 `json:"review_id" jsonschema:"review id"`
}

type CreateCampaignParams struct {
	ProjectID uint64 `json:"project_id" jsonschema:"funded project id"`
	Goal      uint64 `json:"goal" jsonschema:"positive funding goal"`
}

type FundCampaignParams struct {
	CampaignID uint64 `json:"campaign_id" jsonschema:"campaign id"`
	Amount     uint64 `json:"amount" jsonschema:"positive amount to move into escrow"`
}

type CampaignIDParams struct {
	CampaignID uint64 `json:"campaign_id" jsonschema:"campaign id"`
}

type GetContributionParams struct {
	CampaignID  uint64 `json:"campaign_id" jsonschema:"campaign id"`
	Contributor string `json:"contributor" jsonschema:"contributing principal"`
}

type SubmitTelescopeDataParams struct {
	TelescopeID string `json:"telescope_id" jsonschema:"instrument identifier"`
	DataHash    string `json:"data_hash" jsonschema:"hex digest of at most 32 bytes, optional 0x prefix"`
	Metadata    string `json:"metadata" jsonschema:"free-form description of the observations"`
}

type SubmitProbeDataParams struct {
	ProbeID  string `json:"probe_id" jsonschema:"probe identifier"`
	DataHash string `json:"data_hash" jsonschema:"hex digest of at most 32 bytes, optional 0x prefix"`
	Metadata string `json:"metadata" jsonschema:"free-form description of the observations"`
}

type DataIDParams struct {
	ID uint64 `json:"id" jsonschema:"data entry id"`
}

type ListJournalParams struct {
	AfterSeq uint64 `json:"after_seq,omitempty" jsonschema:"return entries after this sequence number"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum entries to return (default 100, max 1000)"`
}

// ContributionResponse is one row of get-campaign-contributions.
type ContributionResponse struct {
	Contributor ledger.Principal `json:"contributor"`
	Amount      uint64           `json:"amount"`
	Refunded    bool             `json:"refunded"`
}

// JournalStatus is the result of verify-journal.
type JournalStatus struct {
	Length uint64        `json:"length"`
	Head   ledger.Digest `json:"head"`
}
