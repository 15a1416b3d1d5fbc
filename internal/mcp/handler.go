package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/metrics"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	AddCollaborator(ctx context.Context, id uint64, collaborator ledger.Principal) error
	UpdateStatus(ctx context.Context, id uint64, status project.Status) error
	UpdateData(ctx context.Context, id uint64, dataHash string) error
	Get(ctx context.Context, id uint64) (*project.Project, error)
	Count(ctx context.Context) (uint64, error)
}

// ReviewService defines review operations needed by MCP.
type ReviewService interface {
	Submit(ctx context.Context, req review.SubmitRequest) (*review.Review, error)
	UpdateStatus(ctx context.Context, id uint64, status review.Status) error
	Get(ctx context.Context, id uint64) (*review.Review, error)
	ProjectReviews(ctx context.Context, projectID uint64) (*review.Summary, error)
	Count(ctx context.Context) (uint64, error)
}

// FundingService defines campaign operations needed by MCP.
type FundingService interface {
	Create(ctx context.Context, req funding.CreateRequest) (*funding.Campaign, error)
	Fund(ctx context.Context, id uint64, amount uint64) error
	Close(ctx context.Context, id uint64) (funding.Status, error)
	ClaimRefund(ctx context.Context, id uint64) (uint64, error)
	Get(ctx context.Context, id uint64) (*funding.Campaign, error)
	GetContribution(ctx context.Context, id uint64, contributor ledger.Principal) (*funding.Contribution, error)
	Contributions(ctx context.Context, id uint64) ([]funding.Contribution, error)
	Count(ctx context.Context) (uint64, error)
}

// ProvenanceService defines data submission operations needed by MCP.
type ProvenanceService interface {
	Submit(ctx context.Context, kind provenance.Kind, req provenance.SubmitRequest) (*provenance.Entry, error)
	Get(ctx context.Context, kind provenance.Kind, id uint64) (*provenance.Entry, error)
	Count(ctx context.Context, kind provenance.Kind) (uint64, error)
}

// JournalService defines journal operations needed by MCP.
type JournalService interface {
	List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error)
	Verify(ctx context.Context) (journal.Head, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects   ProjectService
	Reviews    ReviewService
	Funding    FundingService
	Provenance ProvenanceService
	Journal    JournalService
}

// Handler dispatches ledger operations by name. It backs both the MCP tools
// and the JSON-RPC transport.
type Handler struct {
	services Services
	metrics  *metrics.Metrics
	logger   *slog.Logger
	ops      map[string]operation
}

// NewHandler creates a new handler.
func NewHandler(services Services, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		services: services,
		metrics:  m,
		logger:   logger,
		ops:      make(map[string]operation, len(operations)),
	}
	for _, op := range operations {
		h.ops[op.name] = op
	}
	return h
}

// Methods returns the operation names in catalog order.
func (h *Handler) Methods() []string {
	names := make([]string, 0, len(operations))
	for _, op := range operations {
		names = append(names, op.name)
	}
	return names
}

// Handle runs the named operation with JSON-encoded params. The caller must
// already be attached to ctx for mutating operations.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	op, ok := h.ops[method]
	if !ok {
		return nil, &APIError{Code: CodeMethodNotFound, Message: "unknown method: " + method}
	}
	return h.invoke(ctx, method, func(ctx context.Context) (any, error) {
		return op.call(ctx, h, params)
	})
}

func (h *Handler) invoke(ctx context.Context, name string, fn func(context.Context) (any, error)) (any, error) {
	start := time.Now()
	result, err := fn(ctx)
	h.metrics.ObserveCall(name, outcome(err), time.Since(start))
	if err != nil {
		if MapError(err) == nil {
			h.logger.Error("call failed", "operation", name, "error", err)
		}
		return nil, mapError(err)
	}
	return result, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, out)
}
