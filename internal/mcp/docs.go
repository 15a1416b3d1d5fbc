package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sciledger records scientific research on four registries: projects, peer reviews, funding campaigns, and telescope/probe data provenance.

Core concepts:
- Every mutating call acts as the authenticated principal; its time is stamped by the server.
- Ids are sequential per registry starting at 1. Telescope and probe data have separate counters.
- Digests are hex strings of at most 32 bytes (optional 0x); shorter values are left-padded.
- Reads of unknown ids return null rather than an error.

Rules of engagement:
1) create-project makes you lead researcher. Only the lead may add-collaborator, update-project-status, update-project-data.
2) submit-review scores a project from 0 to 100. Only the reviewer may update-review-status.
3) create-funding-campaign names the project's lead as beneficiary. fund-campaign moves value into escrow while active.
4) close-campaign (beneficiary only) settles once: successful if raised >= goal, otherwise failed. Contributors to a failed campaign may claim-refund.
5) list-journal and verify-journal audit every committed mutation through a SHA3-256 hash chain.

Errors are JSON objects {code, message, recovery_hint}. Codes: VALIDATION_ERROR, INVALID_SCORE, NOT_FOUND, UNAUTHORIZED, INVALID_STATE_TRANSITION, CAMPAIGN_NOT_ACTIVE, CONFLICT, INTEGRITY.

Docs:
- sciledger://docs/index
- sciledger://docs/funding
- sciledger://docs/provenance
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sciledger://docs/index",
		Name:        "docs_index",
		Title:       "sciledger docs index",
		Description: "Entry point: registries, identities, and which doc to read next.",
		Content: `# sciledger docs

## Registries

| Registry | Create | Mutate | Read |
|---|---|---|---|
| Projects | create-project | add-collaborator, update-project-status, update-project-data | get-project, get-project-count |
| Reviews | submit-review | update-review-status | get-review, get-project-reviews, get-review-count |
| Funding | create-funding-campaign | fund-campaign, close-campaign, claim-refund | get-campaign, get-contribution, get-campaign-contributions, get-campaign-count |
| Data | submit-telescope-data, submit-probe-data | (immutable) | get-telescope-data, get-probe-data, get-telescope-data-count, get-probe-data-count |

## Identity

Over HTTP the principal comes from the bearer token. Over stdio the configured default principal is used;
set _meta.principal on a request to act as another principal locally.

## Project status

Any of active, completed, suspended may follow any other. Anything else fails INVALID_STATE_TRANSITION.

## Review averages

get-project-reviews averages every review of the project regardless of status and truncates toward zero.
A project without reviews returns null.

Read next: sciledger://docs/funding, sciledger://docs/provenance.
`,
	},
	{
		URI:         "sciledger://docs/funding",
		Name:        "docs_funding",
		Title:       "Funding campaigns and escrow",
		Description: "Campaign lifecycle, escrow accounting, and refunds.",
		Content: `# Funding campaigns

## Lifecycle

active -> successful (raised >= goal at close)
active -> failed     (raised < goal at close)

Both terminal states are final. Funding or closing a closed campaign fails CAMPAIGN_NOT_ACTIVE.

## Escrow

fund-campaign credits raised, the escrow balance, and the caller's contribution in one atomic step.
Contributions are tracked per principal and always sum to raised.

## Refunds

After a campaign fails each contributor may call claim-refund once. The escrow balance drops by the
refunded amount; raised keeps the historical total.

## Limits

goal and amount must be positive and fit a signed 64-bit integer; raised may not overflow it.
`,
	},
	{
		URI:         "sciledger://docs/provenance",
		Name:        "docs_provenance",
		Title:       "Data provenance",
		Description: "Telescope and probe submissions and the audit journal.",
		Content: `# Data provenance

submit-telescope-data(telescope_id, data_hash, metadata) and submit-probe-data(probe_id, data_hash, metadata)
store immutable entries stamped with the call time and the submitting principal.

## Journal

Every committed mutation is appended to a journal entry {seq, call_id, registry, operation, principal,
entity_id, at, prev_hash, hash} where hash = SHA3-256(prev_hash || canonical entry).

- list-journal(after_seq, limit) pages through entries.
- verify-journal recomputes every link and returns {length, head}, or fails INTEGRITY.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
