package funding_test

import (
	"errors"
	"testing"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/stretchr/testify/require"
)

func TestErrCampaignNotActive_IsTransitionError(t *testing.T) {
	require.True(t, errors.Is(funding.ErrCampaignNotActive, funding.ErrInvalidTransition))
}
