// Package testserver runs the full ledger stack over HTTP for end-to-end tests.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/leveldb"
	"github.com/rpggio/sciledger/internal/mcp"
	"github.com/rpggio/sciledger/internal/metrics"
	"github.com/rpggio/sciledger/internal/sqlite"
	"github.com/rpggio/sciledger/internal/transport"
)

// TestServer is an httptest server backed by in-memory stores.
type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Journal *journal.Service
	APIKeys *sqlite.APIKeyRepository
	JWT     *transport.JWTResolver
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    transport.ErrorData `json:"data"`
}

// New starts a server. Each entry of keys binds a bearer token to a principal.
func New(t *testing.T, keys map[string]ledger.Principal) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	journalDB, err := leveldb.OpenMemory()
	require.NoError(t, err)

	apiKeys := sqlite.NewAPIKeyRepository(db)
	for token, principal := range keys {
		require.NoError(t, apiKeys.Put(t.Context(), token, principal, "test"))
	}

	journalSvc := journal.NewService(leveldb.NewJournalStore(journalDB, false), nil)
	projectRepo := sqlite.NewProjectRepository(db)

	registry := prometheus.NewRegistry()
	handler := mcp.NewHandler(mcp.Services{
		Projects:   project.NewService(projectRepo, journalSvc, nil),
		Reviews:    review.NewService(sqlite.NewReviewRepository(db), projectRepo, journalSvc, nil),
		Funding:    funding.NewService(sqlite.NewCampaignRepository(db), projectRepo, journalSvc, nil),
		Provenance: provenance.NewService(sqlite.NewDataRepository(db), journalSvc, nil),
		Journal:    journalSvc,
	}, metrics.New(registry), nil)

	jwtResolver := transport.NewJWTResolver("test-secret", "sciledger-test")
	resolver := transport.ChainResolver{transport.APIKeyResolver{Store: apiKeys}, jwtResolver}

	server := httptest.NewServer(transport.NewServer(handler, transport.Options{
		Identity: transport.AuthMiddleware(resolver, ledger.SystemClock{}),
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = journalDB.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:  server,
		DB:      db,
		Journal: journalSvc,
		APIKeys: apiKeys,
		JWT:     jwtResolver,
	}
}

// Post sends one JSON-RPC request as the holder of token. It is safe to use
// from goroutines other than the test's.
func (ts *TestServer) Post(token, method string, params any) (json.RawMessage, *RPCError, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)
	}

	var out struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, err
	}
	return out.Result, out.Error, nil
}

// Call is Post that fails the test on transport errors.
func (ts *TestServer) Call(t *testing.T, token, method string, params any) (json.RawMessage, *RPCError) {
	t.Helper()
	result, rpcErr, err := ts.Post(token, method, params)
	require.NoError(t, err)
	return result, rpcErr
}

// MustCall is Call that fails the test on an RPC error.
func (ts *TestServer) MustCall(t *testing.T, token, method string, params any) json.RawMessage {
	t.Helper()
	result, rpcErr := ts.Call(t, token, method, params)
	require.Nil(t, rpcErr, "%s failed: %+v", method, rpcErr)
	return result
}

// RequireCode asserts that the call fails with the given ledger error code.
func (ts *TestServer) RequireCode(t *testing.T, code, token, method string, params any) {
	t.Helper()
	_, rpcErr := ts.Call(t, token, method, params)
	require.NotNil(t, rpcErr, "%s unexpectedly succeeded", method)
	require.Equal(t, code, rpcErr.Data.Code, "%s: %s", method, rpcErr.Message)
}
