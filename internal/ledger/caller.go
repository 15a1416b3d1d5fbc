// Package ledger holds the primitives every registry shares: the calling
// principal, the per-call timestamp supplied by the execution substrate, and
// fixed-width content digests.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoCaller indicates a call arrived without an authenticated principal.
var ErrNoCaller = errors.New("no authenticated caller")

// Principal is the authenticated identity of a call's caller.
type Principal string

// Valid reports whether the principal is non-blank.
func (p Principal) Valid() bool {
	return strings.TrimSpace(string(p)) != ""
}

func (p Principal) String() string {
	return string(p)
}

// Caller is the identity context attached to a single call.
type Caller struct {
	Principal Principal
	At        time.Time
	CallID    string
}

// Clock supplies the current time for a call.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// NewCaller stamps a caller for principal with the clock's time and a fresh call id.
func NewCaller(principal Principal, clock Clock) Caller {
	if clock == nil {
		clock = SystemClock{}
	}
	return Caller{
		Principal: principal,
		At:        clock.Now().UTC(),
		CallID:    uuid.NewString(),
	}
}

type callerKey struct{}

// WithCaller attaches caller to ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller attached to ctx. Calls without a valid
// principal fail with ErrNoCaller.
func CallerFrom(ctx context.Context) (Caller, error) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || !caller.Principal.Valid() {
		return Caller{}, ErrNoCaller
	}
	if caller.At.IsZero() {
		caller.At = time.Now().UTC()
	}
	return caller, nil
}
