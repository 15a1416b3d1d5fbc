package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	entries []journal.Entry
}

func (m *memStore) Head(context.Context) (journal.Head, error) {
	if len(m.entries) == 0 {
		return journal.Head{}, nil
	}
	last := m.entries[len(m.entries)-1]
	return journal.Head{Length: last.Seq, Hash: last.Hash}, nil
}

func (m *memStore) Append(ctx context.Context, e journal.Entry) error {
	head, _ := m.Head(ctx)
	if e.Seq != head.Length+1 {
		return repository.ErrConflict
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) List(_ context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	var out []journal.Entry
	for _, e := range m.entries {
		if e.Seq > opts.AfterSeq && len(out) < opts.Limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func callerCtx(principal ledger.Principal, callID string) context.Context {
	return ledger.WithCaller(context.Background(), ledger.Caller{
		Principal: principal,
		At:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		CallID:    callID,
	})
}

func TestJournalService_AppendChains(t *testing.T) {
	store := &memStore{}
	svc := journal.NewService(store, nil)

	first, err := svc.Append(callerCtx("alice", "c1"), journal.Event{Registry: journal.RegistryProjects, Operation: "create-project", EntityID: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.Seq)
	require.True(t, first.PrevHash.IsZero())

	second, err := svc.Append(callerCtx("bob", "c2"), journal.Event{Registry: journal.RegistryReviews, Operation: "submit-review", EntityID: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, first.Hash, second.PrevHash)
	require.Equal(t, ledger.Principal("bob"), second.Principal)

	head, err := svc.Verify(context.Background())
	require.NoError(t, err)
	require.Equal(t, journal.Head{Length: 2, Hash: second.Hash}, head)
}

func TestJournalService_AppendRequiresCaller(t *testing.T) {
	svc := journal.NewService(&memStore{}, nil)
	_, err := svc.Append(context.Background(), journal.Event{Registry: "projects", Operation: "create-project"})
	require.ErrorIs(t, err, ledger.ErrNoCaller)

	_, err = svc.Append(callerCtx("alice", "c1"), journal.Event{Registry: "projects"})
	require.ErrorIs(t, err, journal.ErrInvalidInput)
}

func TestJournalService_VerifyDetectsTampering(t *testing.T) {
	store := &memStore{}
	svc := journal.NewService(store, nil)
	for i := uint64(1); i <= 3; i++ {
		_, err := svc.Append(callerCtx("alice", "c"), journal.Event{Registry: journal.RegistryFunding, Operation: "fund-campaign", EntityID: i})
		require.NoError(t, err)
	}

	store.entries[1].Principal = "mallory"
	_, err := svc.Verify(context.Background())
	require.ErrorIs(t, err, journal.ErrIntegrity)
}

func TestJournalService_ListPages(t *testing.T) {
	store := &memStore{}
	svc := journal.NewService(store, nil)
	for i := uint64(1); i <= 5; i++ {
		_, err := svc.Append(callerCtx("alice", "c"), journal.Event{Registry: journal.RegistryProvenance, Operation: "submit-probe-data", EntityID: i})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), journal.ListOptions{AfterSeq: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, uint64(3), page[0].Seq)
	require.Equal(t, uint64(4), page[1].Seq)

	all, err := svc.List(context.Background(), journal.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestComputeHash_IgnoresOwnHash(t *testing.T) {
	e := journal.Link(journal.Head{}, journal.Entry{Registry: "projects", Operation: "create-project", EntityID: 1})
	mutated := e
	mutated.Hash = ledger.Digest{1}
	require.Equal(t, e.Hash, journal.ComputeHash(mutated))

	mutated.EntityID = 2
	require.NotEqual(t, e.Hash, journal.ComputeHash(mutated))
}
