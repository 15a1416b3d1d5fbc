package provenance_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
	"github.com/rpggio/sciledger/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

func as(principal ledger.Principal) context.Context {
	return ledger.WithCaller(context.Background(), ledger.Caller{Principal: principal, At: at, CallID: "c"})
}

func TestProvenanceService_SubmitStampsCallTime(t *testing.T) {
	digest, err := ledger.ParseDigest("0x01")
	require.NoError(t, err)

	repo := &mocks.DataRepository{}
	repo.On("Create", mock.Anything, &provenance.Entry{
		Kind:      provenance.KindTelescope,
		SourceID:  "HUBBLE-1",
		Submitter: "alice",
		Timestamp: at,
		DataHash:  digest,
		Metadata:  "UV spectra",
	}).Return(uint64(1), nil)
	jr := &mocks.Journal{}
	jr.On("Append", mock.Anything, journal.Event{
		Registry:  journal.RegistryProvenance,
		Operation: "submit-telescope-data",
		EntityID:  1,
	}).Return(&journal.Entry{Seq: 1}, nil)

	svc := provenance.NewService(repo, jr, nil)
	e, err := svc.Submit(as("alice"), provenance.KindTelescope, provenance.SubmitRequest{
		SourceID: "HUBBLE-1",
		DataHash: digest,
		Metadata: "UV spectra",
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), e.ID)
	require.Equal(t, at, e.Timestamp)
	jr.AssertExpectations(t)
}

func TestProvenanceService_SubmitValidation(t *testing.T) {
	repo := &mocks.DataRepository{}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *provenance.Entry) bool {
		return e.Kind == provenance.KindProbe && e.SourceID == " "
	})).Return(uint64(1), nil).Once()
	svc := provenance.NewService(repo, nil, nil)

	// Source ids are free text; blank ones are stored as given.
	e, err := svc.Submit(as("alice"), provenance.KindProbe, provenance.SubmitRequest{SourceID: " "})
	require.NoError(t, err)
	require.Equal(t, " ", e.SourceID)

	_, err = svc.Submit(as("alice"), provenance.Kind("radar"), provenance.SubmitRequest{SourceID: "x"})
	require.ErrorIs(t, err, provenance.ErrInvalidKind)

	_, err = svc.Submit(context.Background(), provenance.KindProbe, provenance.SubmitRequest{SourceID: "x"})
	require.ErrorIs(t, err, ledger.ErrNoCaller)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProvenanceService_GetUnknown(t *testing.T) {
	repo := &mocks.DataRepository{}
	repo.On("Get", mock.Anything, provenance.KindProbe, uint64(3)).Return((*provenance.Entry)(nil), repository.ErrNotFound)

	svc := provenance.NewService(repo, nil, nil)
	e, err := svc.Get(context.Background(), provenance.KindProbe, 3)
	require.NoError(t, err)
	require.Nil(t, e)
}
