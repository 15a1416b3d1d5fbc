package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
)

type operation struct {
	name        string
	description string
	call        func(ctx context.Context, h *Handler, params json.RawMessage) (any, error)
	register    func(server *sdkmcp.Server, h *Handler)
}

func tool[In any](name, description string, fn func(ctx context.Context, h *Handler, in In) (any, error)) operation {
	return operation{
		name:        name,
		description: description,
		call: func(ctx context.Context, h *Handler, params json.RawMessage) (any, error) {
			var in In
			if err := decodeParams(params, &in); err != nil {
				return nil, invalidParams(err)
			}
			return fn(ctx, h, in)
		},
		register: func(server *sdkmcp.Server, h *Handler) {
			sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
				func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
					result, err := h.invoke(ctx, name, func(ctx context.Context) (any, error) {
						return fn(ctx, h, in)
					})
					return toolResult(result, err)
				})
		},
	}
}

func toolResult(result any, err error) (*sdkmcp.CallToolResult, any, error) {
	if err != nil {
		apiErr := MapError(err)
		if apiErr == nil {
			apiErr = &APIError{Code: CodeInternal, Message: err.Error()}
		}
		data, _ := json.Marshal(apiErr)
		return &sdkmcp.CallToolResult{
			IsError: true,
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, op := range operations {
		op.register(server, h)
	}
}

var operations = []operation{
	// Projects
	tool("create-project", "Create a research project led by the caller; returns the project id",
		func(ctx context.Context, h *Handler, in CreateProjectParams) (any, error) {
			proj, err := h.services.Projects.Create(ctx, project.CreateRequest{Title: in.Title, Description: in.Description})
			if err != nil {
				return nil, err
			}
			return proj.ID, nil
		}),
	tool("add-collaborator", "Add a collaborator to a project (lead researcher only)",
		func(ctx context.Context, h *Handler, in AddCollaboratorParams) (any, error) {
			return ok(h.services.Projects.AddCollaborator(ctx, in.ProjectID, ledger.Principal(in.Collaborator)))
		}),
	tool("update-project-status", "Set a project's status to active, completed or suspended (lead researcher only)",
		func(ctx context.Context, h *Handler, in UpdateProjectStatusParams) (any, error) {
			return ok(h.services.Projects.UpdateStatus(ctx, in.ProjectID, project.Status(in.NewStatus)))
		}),
	tool("update-project-data", "Replace a project's data digest (lead researcher only)",
		func(ctx context.Context, h *Handler, in UpdateProjectDataParams) (any, error) {
			return ok(h.services.Projects.UpdateData(ctx, in.ProjectID, in.DataHash))
		}),
	tool("get-project", "Get a project by id; null if unknown",
		func(ctx context.Context, h *Handler, in ProjectIDParams) (any, error) {
			return h.services.Projects.Get(ctx, in.ProjectID)
		}),
	tool("get-project-count", "Number of projects created",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			return h.services.Projects.Count(ctx)
		}),

	// Reviews
	tool("submit-review", "Submit a peer review with a score from 0 to 100; returns the review id",
		func(ctx context.Context, h *Handler, in SubmitReviewParams) (any, error) {
			rev, err := h.services.Reviews.Submit(ctx, review.SubmitRequest{ProjectID: in.ProjectID, Score: in.Score, Comment: in.Comment})
			if err != nil {
				return nil, err
			}
			return rev.ID, nil
		}),
	tool("update-review-status", "Set a review's status (reviewer only)",
		func(ctx context.Context, h *Handler, in UpdateReviewStatusParams) (any, error) {
			return ok(h.services.Reviews.UpdateStatus(ctx, in.ReviewID, review.Status(in.NewStatus)))
		}),
	tool("get-review", "Get a review by id; null if unknown",
		func(ctx context.Context, h *Handler, in ReviewIDParams) (any, error) {
			return h.services.Reviews.Get(ctx, in.ReviewID)
		}),
	tool("get-project-reviews", "Review ids and truncated average score for a project; null if it has no reviews",
		func(ctx context.Context, h *Handler, in ProjectIDParams) (any, error) {
			return h.services.Reviews.ProjectReviews(ctx, in.ProjectID)
		}),
	tool("get-review-count", "Number of reviews submitted",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			return h.services.Reviews.Count(ctx)
		}),

	// Funding
	tool("create-funding-campaign", "Open a funding campaign for a project; the lead researcher becomes beneficiary",
		func(ctx context.Context, h *Handler, in CreateCampaignParams) (any, error) {
			c, err := h.services.Funding.Create(ctx, funding.CreateRequest{ProjectID: in.ProjectID, Goal: in.Goal})
			if err != nil {
				return nil, err
			}
			return c.ID, nil
		}),
	tool("fund-campaign", "Contribute to an active campaign's escrow",
		func(ctx context.Context, h *Handler, in FundCampaignParams) (any, error) {
			if err := h.services.Funding.Fund(ctx, in.CampaignID, in.Amount); err != nil {
				return nil, err
			}
			h.metrics.AddFundsRaised(in.Amount)
			return true, nil
		}),
	tool("close-campaign", "Close a campaign as successful or failed against its goal (beneficiary only)",
		func(ctx context.Context, h *Handler, in CampaignIDParams) (any, error) {
			status, err := h.services.Funding.Close(ctx, in.CampaignID)
			if err != nil {
				return nil, err
			}
			h.metrics.IncrementCampaignsClosed(string(status))
			return true, nil
		}),
	tool("get-campaign", "Get a campaign by id; null if unknown",
		func(ctx context.Context, h *Handler, in CampaignIDParams) (any, error) {
			return h.services.Funding.Get(ctx, in.CampaignID)
		}),
	tool("get-campaign-count", "Number of campaigns created",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			return h.services.Funding.Count(ctx)
		}),
	tool("get-contribution", "A contributor's total and refund state for a campaign; null if none",
		func(ctx context.Context, h *Handler, in GetContributionParams) (any, error) {
			return h.services.Funding.GetContribution(ctx, in.CampaignID, ledger.Principal(in.Contributor))
		}),
	tool("get-campaign-contributions", "Contributions to a campaign in first-contribution order; null if the campaign is unknown",
		func(ctx context.Context, h *Handler, in CampaignIDParams) (any, error) {
			c, err := h.services.Funding.Get(ctx, in.CampaignID)
			if err != nil || c == nil {
				return nil, err
			}
			list, err := h.services.Funding.Contributions(ctx, in.CampaignID)
			if err != nil {
				return nil, err
			}
			resp := make([]ContributionResponse, 0, len(list))
			for _, contrib := range list {
				resp = append(resp, ContributionResponse{
					Contributor: contrib.Contributor,
					Amount:      contrib.Amount,
					Refunded:    contrib.Refunded,
				})
			}
			return resp, nil
		}),
	tool("claim-refund", "Return the caller's contribution from a failed campaign; returns the refunded amount",
		func(ctx context.Context, h *Handler, in CampaignIDParams) (any, error) {
			amount, err := h.services.Funding.ClaimRefund(ctx, in.CampaignID)
			if err != nil {
				return nil, err
			}
			h.metrics.AddFundsRefunded(amount)
			return amount, nil
		}),

	// Provenance
	tool("submit-telescope-data", "Record a telescope observation digest; returns the data id",
		func(ctx context.Context, h *Handler, in SubmitTelescopeDataParams) (any, error) {
			return submitData(ctx, h, provenance.KindTelescope, in.TelescopeID, in.DataHash, in.Metadata)
		}),
	tool("submit-probe-data", "Record a probe observation digest; returns the data id",
		func(ctx context.Context, h *Handler, in SubmitProbeDataParams) (any, error) {
			return submitData(ctx, h, provenance.KindProbe, in.ProbeID, in.DataHash, in.Metadata)
		}),
	tool("get-telescope-data", "Get a telescope data entry by id; null if unknown",
		func(ctx context.Context, h *Handler, in DataIDParams) (any, error) {
			return h.services.Provenance.Get(ctx, provenance.KindTelescope, in.ID)
		}),
	tool("get-probe-data", "Get a probe data entry by id; null if unknown",
		func(ctx context.Context, h *Handler, in DataIDParams) (any, error) {
			return h.services.Provenance.Get(ctx, provenance.KindProbe, in.ID)
		}),
	tool("get-telescope-data-count", "Number of telescope data entries",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			return h.services.Provenance.Count(ctx, provenance.KindTelescope)
		}),
	tool("get-probe-data-count", "Number of probe data entries",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			return h.services.Provenance.Count(ctx, provenance.KindProbe)
		}),

	// Journal
	tool("list-journal", "List hash-chained journal entries after a sequence number",
		func(ctx context.Context, h *Handler, in ListJournalParams) (any, error) {
			entries, err := h.services.Journal.List(ctx, journal.ListOptions{AfterSeq: in.AfterSeq, Limit: in.Limit})
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []journal.Entry{}
			}
			return entries, nil
		}),
	tool("verify-journal", "Recompute every journal link and return the verified length and head digest",
		func(ctx context.Context, h *Handler, _ NoParams) (any, error) {
			head, err := h.services.Journal.Verify(ctx)
			if err != nil {
				return nil, err
			}
			return JournalStatus{Length: head.Length, Head: head.Hash}, nil
		}),
}

func submitData(ctx context.Context, h *Handler, kind provenance.Kind, sourceID, dataHash, metadata string) (any, error) {
	digest, err := ledger.ParseDigest(dataHash)
	if err != nil {
		return nil, err
	}
	e, err := h.services.Provenance.Submit(ctx, kind, provenance.SubmitRequest{SourceID: sourceID, DataHash: digest, Metadata: metadata})
	if err != nil {
		return nil, err
	}
	return e.ID, nil
}

func ok(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return true, nil
}
