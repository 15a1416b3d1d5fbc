package testserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/sciledger/internal/ledger"
)

var keys = map[string]ledger.Principal{
	"key-lead":  "lead",
	"key-bob":   "bob",
	"key-carol": "carol",
	"key-rev":   "reviewer",
	"key-obs":   "observatory",
}

func TestFundingCampaignScenarios(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-lead", "create-project", map[string]any{"title": "Exoplanet atmospheres", "description": "transit spectroscopy"})

	id := ts.MustCall(t, "key-bob", "create-funding-campaign", map[string]any{"project_id": 1, "goal": 1000000})
	assert.JSONEq(t, `1`, string(id))

	ok := ts.MustCall(t, "key-bob", "fund-campaign", map[string]any{"campaign_id": 1, "amount": 100000})
	assert.JSONEq(t, `true`, string(ok))

	ts.RequireCode(t, "UNAUTHORIZED", "key-bob", "close-campaign", map[string]any{"campaign_id": 1})

	ts.MustCall(t, "key-carol", "fund-campaign", map[string]any{"campaign_id": 1, "amount": 400000})

	var campaign struct {
		ProjectID   uint64 `json:"project_id"`
		Goal        uint64 `json:"goal"`
		Raised      uint64 `json:"raised"`
		Status      string `json:"status"`
		Beneficiary string `json:"beneficiary"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-bob", "get-campaign", map[string]any{"campaign_id": 1}), &campaign))
	assert.Equal(t, uint64(1), campaign.ProjectID)
	assert.Equal(t, uint64(1000000), campaign.Goal)
	assert.Equal(t, uint64(500000), campaign.Raised)
	assert.Equal(t, "active", campaign.Status)
	assert.Equal(t, "lead", campaign.Beneficiary)

	ts.MustCall(t, "key-lead", "close-campaign", map[string]any{"campaign_id": 1})
	ts.RequireCode(t, "CAMPAIGN_NOT_ACTIVE", "key-lead", "close-campaign", map[string]any{"campaign_id": 1})
	ts.RequireCode(t, "CAMPAIGN_NOT_ACTIVE", "key-bob", "fund-campaign", map[string]any{"campaign_id": 1, "amount": 1})

	refund := ts.MustCall(t, "key-carol", "claim-refund", map[string]any{"campaign_id": 1})
	assert.JSONEq(t, `400000`, string(refund))
	ts.RequireCode(t, "VALIDATION_ERROR", "key-carol", "claim-refund", map[string]any{"campaign_id": 1})

	contributions := ts.MustCall(t, "key-bob", "get-campaign-contributions", map[string]any{"campaign_id": 1})
	assert.JSONEq(t, `[{"contributor":"bob","amount":100000,"refunded":false},{"contributor":"carol","amount":400000,"refunded":true}]`, string(contributions))
}

func TestReviewScenarios(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-lead", "create-project", map[string]any{"title": "P"})

	ts.RequireCode(t, "INVALID_SCORE", "key-rev", "submit-review", map[string]any{"project_id": 1, "score": 101, "comment": "x"})
	assert.JSONEq(t, `null`, string(ts.MustCall(t, "key-rev", "get-project-reviews", map[string]any{"project_id": 999})))

	ts.MustCall(t, "key-rev", "submit-review", map[string]any{"project_id": 1, "score": 70, "comment": "ok"})
	ts.MustCall(t, "key-bob", "submit-review", map[string]any{"project_id": 1, "score": 75, "comment": "good"})
	assert.JSONEq(t, `{"review_ids":[1,2],"average_score":72}`,
		string(ts.MustCall(t, "key-rev", "get-project-reviews", map[string]any{"project_id": 1})))
}

func TestProjectAuthorization(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-lead", "create-project", map[string]any{"title": "P"})
	ts.MustCall(t, "key-lead", "add-collaborator", map[string]any{"project_id": 1, "collaborator": "bob"})

	for _, call := range []struct {
		method string
		params map[string]any
	}{
		{"add-collaborator", map[string]any{"project_id": 1, "collaborator": "mallory"}},
		{"update-project-status", map[string]any{"project_id": 1, "new_status": "suspended"}},
		{"update-project-data", map[string]any{"project_id": 1, "data_hash": "0x01"}},
	} {
		ts.RequireCode(t, "UNAUTHORIZED", "key-bob", call.method, call.params)
		ts.RequireCode(t, "NOT_FOUND", "key-lead", call.method, map[string]any{"project_id": 42, "collaborator": "x", "new_status": "active", "data_hash": "0x01"})
	}

	ts.MustCall(t, "key-lead", "update-project-status", map[string]any{"project_id": 1, "new_status": "completed"})
	ts.MustCall(t, "key-lead", "update-project-status", map[string]any{"project_id": 1, "new_status": "active"})
}

func TestProvenanceAndJournal(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-obs", "submit-telescope-data", map[string]any{"telescope_id": "VLT", "data_hash": "0xdeadbeef", "metadata": "UVES"})
	ts.MustCall(t, "key-obs", "submit-probe-data", map[string]any{"probe_id": "Juno", "data_hash": "0x01", "metadata": "MWR"})

	var entry struct {
		SourceID  string `json:"source_id"`
		Submitter string `json:"submitter"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-bob", "get-telescope-data", map[string]any{"id": 1}), &entry))
	assert.Equal(t, "VLT", entry.SourceID)
	assert.Equal(t, "observatory", entry.Submitter)
	assert.NotEmpty(t, entry.Timestamp)

	var status struct {
		Length uint64 `json:"length"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-bob", "verify-journal", nil), &status))
	assert.Equal(t, uint64(2), status.Length)

	var entries []struct {
		Seq       uint64 `json:"seq"`
		Operation string `json:"operation"`
		Principal string `json:"principal"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-bob", "list-journal", map[string]any{"limit": 1}), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "submit-telescope-data", entries[0].Operation)
	assert.Equal(t, "observatory", entries[0].Principal)
}

func TestConcurrentFunding(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-lead", "create-project", map[string]any{"title": "P"})
	ts.MustCall(t, "key-lead", "create-funding-campaign", map[string]any{"project_id": 1, "goal": 1000000})

	tokens := []string{"key-bob", "key-carol", "key-rev", "key-obs"}
	const perToken = 10

	var g errgroup.Group
	for _, token := range tokens {
		g.Go(func() error {
			for range perToken {
				_, rpcErr, err := ts.Post(token, "fund-campaign", map[string]any{"campaign_id": 1, "amount": 7})
				if err != nil {
					return err
				}
				if rpcErr != nil {
					return fmt.Errorf("fund-campaign: %s", rpcErr.Message)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var campaign struct {
		Raised        uint64 `json:"raised"`
		EscrowBalance uint64 `json:"escrow_balance"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-lead", "get-campaign", map[string]any{"campaign_id": 1}), &campaign))
	assert.Equal(t, uint64(len(tokens)*perToken*7), campaign.Raised)
	assert.Equal(t, campaign.Raised, campaign.EscrowBalance)

	var contributions []struct {
		Amount uint64 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-lead", "get-campaign-contributions", map[string]any{"campaign_id": 1}), &contributions))
	var sum uint64
	for _, c := range contributions {
		sum += c.Amount
	}
	assert.Equal(t, campaign.Raised, sum)

	_, err := ts.Journal.Verify(t.Context())
	require.NoError(t, err)
}

func TestJWTAuthentication(t *testing.T) {
	ts := New(t, keys)

	token, err := ts.JWT.Issue("dana", time.Hour)
	require.NoError(t, err)

	ts.MustCall(t, token, "create-project", map[string]any{"title": "JWT project"})
	var proj struct {
		LeadResearcher string `json:"lead_researcher"`
	}
	require.NoError(t, json.Unmarshal(ts.MustCall(t, "key-bob", "get-project", map[string]any{"project_id": 1}), &proj))
	assert.Equal(t, "dana", proj.LeadResearcher)
}

func TestUnknownTokenRejected(t *testing.T) {
	ts := New(t, keys)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := New(t, keys)

	ts.MustCall(t, "key-lead", "create-project", map[string]any{"title": "P"})

	resp, err := http.Get(ts.Server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sciledger_calls_total{operation="create-project",outcome="ok"} 1`)
}
