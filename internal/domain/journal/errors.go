package journal

import "errors"

var (
	// ErrInvalidInput indicates a malformed journal event.
	ErrInvalidInput = errors.New("invalid journal input")
	// ErrIntegrity indicates the stored chain does not verify.
	ErrIntegrity = errors.New("journal integrity check failed")
)
