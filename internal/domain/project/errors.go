package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnauthorized indicates the caller is not the project's lead researcher.
	ErrUnauthorized = errors.New("caller is not the lead researcher")
	// ErrInvalidStatus indicates a status outside the project lifecycle.
	ErrInvalidStatus = errors.New("invalid project status")
)
