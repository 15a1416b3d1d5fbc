package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDigest(t *testing.T) {
	d, err := ParseDigest("0x1234567890abcdef")
	require.NoError(t, err)
	require.Equal(t, "0x0000000000000000000000000000000000000000000000001234567890abcdef", d.String())

	full := "ab" + "00112233445566778899aabbccddeeff00112233445566778899aabbccddee"
	d, err = ParseDigest(full)
	require.NoError(t, err)
	require.Equal(t, byte(0xab), d[0])

	_, err = ParseDigest("")
	require.ErrorIs(t, err, ErrInvalidDigest)
	_, err = ParseDigest("0xzz")
	require.ErrorIs(t, err, ErrInvalidDigest)
	_, err = ParseDigest(full + "ff")
	require.ErrorIs(t, err, ErrInvalidDigest)
}

func TestDigest_ZeroJSON(t *testing.T) {
	var d Digest
	require.True(t, d.IsZero())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"0x0000000000000000000000000000000000000000000000000000000000000000"`, string(data))

	var back Digest
	require.NoError(t, json.Unmarshal([]byte(`"0x01"`), &back))
	require.Equal(t, byte(1), back[DigestSize-1])
}

func TestDigest_Scan(t *testing.T) {
	var d Digest
	require.Error(t, d.Scan("nope"))
	require.Error(t, d.Scan([]byte{1, 2}))

	raw := make([]byte, DigestSize)
	raw[0] = 7
	require.NoError(t, d.Scan(raw))
	require.Equal(t, byte(7), d[0])
}

func TestCallerFrom(t *testing.T) {
	_, err := CallerFrom(context.Background())
	require.ErrorIs(t, err, ErrNoCaller)

	ctx := WithCaller(context.Background(), Caller{Principal: "  "})
	_, err = CallerFrom(ctx)
	require.ErrorIs(t, err, ErrNoCaller)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	caller := NewCaller("ST1LEAD", ClockFunc(func() time.Time { return at }))
	require.NotEmpty(t, caller.CallID)

	got, err := CallerFrom(WithCaller(context.Background(), caller))
	require.NoError(t, err)
	require.Equal(t, Principal("ST1LEAD"), got.Principal)
	require.Equal(t, at, got.At)
}
