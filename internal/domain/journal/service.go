package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/sciledger/internal/ledger"
)

// Service appends to and audits the mutation journal.
type Service struct {
	store  Store
	logger *slog.Logger

	mu sync.Mutex
}

// NewService creates a new journal service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, logger: logger}
}

// Append chains ev onto the journal on behalf of the caller in ctx.
func (s *Service) Append(ctx context.Context, ev Event) (*Entry, error) {
	caller, err := ledger.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.Registry) == "" || strings.TrimSpace(ev.Operation) == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.store.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading journal head: %w", err)
	}

	entry := Link(head, Entry{
		CallID:    caller.CallID,
		Registry:  ev.Registry,
		Operation: ev.Operation,
		Principal: caller.Principal,
		EntityID:  ev.EntityID,
		At:        caller.At,
	})
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending journal entry: %w", err)
	}

	s.logger.Debug("journal appended", "seq", entry.Seq, "operation", entry.Operation)
	return &entry, nil
}

// List returns entries with Seq greater than opts.AfterSeq in order.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	entries, err := s.store.List(ctx, opts.normalized())
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	return entries, nil
}

// Head returns the current tip of the journal.
func (s *Service) Head(ctx context.Context) (Head, error) {
	return s.store.Head(ctx)
}

// Verify walks the whole journal and recomputes every link.
func (s *Service) Verify(ctx context.Context) (Head, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var head Head
	for {
		page, err := s.store.List(ctx, ListOptions{AfterSeq: head.Length, Limit: MaxListLimit})
		if err != nil {
			return head, fmt.Errorf("reading journal: %w", err)
		}
		if len(page) == 0 {
			break
		}
		if head, err = Check(head, page); err != nil {
			s.logger.Error("journal integrity failure", "after_seq", head.Length)
			return head, err
		}
	}

	stored, err := s.store.Head(ctx)
	if err != nil {
		return head, fmt.Errorf("reading journal head: %w", err)
	}
	if stored != head {
		return head, ErrIntegrity
	}
	return head, nil
}
