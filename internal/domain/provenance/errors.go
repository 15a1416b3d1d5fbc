package provenance

import "errors"

var (
	// ErrInvalidKind indicates an unknown data kind.
	ErrInvalidKind = errors.New("invalid data kind")
)
