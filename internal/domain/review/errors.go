package review

import "errors"

var (
	// ErrReviewNotFound indicates the review doesn't exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrProjectNotFound indicates the reviewed project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidScore indicates a score outside 0..100.
	ErrInvalidScore = errors.New("invalid score")
	// ErrUnauthorized indicates the caller is not the review's author.
	ErrUnauthorized = errors.New("caller is not the reviewer")
	// ErrInvalidStatus indicates a status outside the review lifecycle.
	ErrInvalidStatus = errors.New("invalid review status")
)
