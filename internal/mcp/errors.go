package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/sciledger/internal/domain/funding"
	"github.com/rpggio/sciledger/internal/domain/journal"
	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/domain/provenance"
	"github.com/rpggio/sciledger/internal/domain/review"
	"github.com/rpggio/sciledger/internal/ledger"
)

// Error codes returned to callers.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidScore   = "INVALID_SCORE"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInvalidState   = "INVALID_STATE_TRANSITION"
	CodeNotActive      = "CAMPAIGN_NOT_ACTIVE"
	CodeConflict       = "CONFLICT"
	CodeIntegrity      = "INTEGRITY"
	CodeInvalidParams  = "INVALID_PARAMS"
	CodeMethodNotFound = "METHOD_NOT_FOUND"
	CodeInternal       = "INTERNAL"
)

// APIError represents a tagged failure returned to callers.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

func invalidParams(err error) *APIError {
	return &APIError{Code: CodeInvalidParams, Message: err.Error(), RecoveryHint: "Check argument names and types"}
}

// MapError maps domain errors to tagged failures. It returns nil for errors
// that carry no domain meaning.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ledger.ErrNoCaller):
		return &APIError{Code: CodeUnauthorized, Message: "no calling principal", RecoveryHint: "Authenticate before calling"}
	case errors.Is(err, project.ErrUnauthorized),
		errors.Is(err, review.ErrUnauthorized),
		errors.Is(err, funding.ErrUnauthorized):
		return &APIError{Code: CodeUnauthorized, Message: "Unauthorized", Details: err.Error()}

	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, review.ErrProjectNotFound),
		errors.Is(err, funding.ErrProjectNotFound):
		return &APIError{Code: CodeNotFound, Message: "project not found", RecoveryHint: "Check the project id"}
	case errors.Is(err, review.ErrReviewNotFound):
		return &APIError{Code: CodeNotFound, Message: "review not found", RecoveryHint: "Check the review id"}
	case errors.Is(err, funding.ErrCampaignNotFound):
		return &APIError{Code: CodeNotFound, Message: "campaign not found", RecoveryHint: "Check the campaign id"}
	case errors.Is(err, funding.ErrContributionNotFound):
		return &APIError{Code: CodeNotFound, Message: "no contribution from caller", RecoveryHint: "Only contributors can claim refunds"}

	case errors.Is(err, review.ErrInvalidScore):
		return &APIError{Code: CodeInvalidScore, Message: "Invalid score", RecoveryHint: "Score must be between 0 and 100"}

	case errors.Is(err, funding.ErrCampaignNotActive):
		return &APIError{Code: CodeNotActive, Message: "Campaign not active", RecoveryHint: "The campaign has been closed"}
	case errors.Is(err, funding.ErrInvalidTransition):
		return &APIError{Code: CodeInvalidState, Message: "invalid campaign state transition", Details: err.Error()}
	case errors.Is(err, project.ErrInvalidStatus):
		return &APIError{Code: CodeInvalidState, Message: "invalid project status", RecoveryHint: "Use active, completed or suspended"}
	case errors.Is(err, review.ErrInvalidStatus):
		return &APIError{Code: CodeInvalidState, Message: "invalid review status", RecoveryHint: "Use submitted, approved or rejected"}

	case errors.Is(err, funding.ErrInvalidGoal):
		return &APIError{Code: CodeValidation, Message: "goal must be positive", Details: err.Error()}
	case errors.Is(err, funding.ErrInvalidAmount):
		return &APIError{Code: CodeValidation, Message: "amount must be positive", Details: err.Error()}
	case errors.Is(err, funding.ErrAlreadyRefunded):
		return &APIError{Code: CodeValidation, Message: "contribution already refunded"}
	case errors.Is(err, provenance.ErrInvalidKind):
		return &APIError{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, ledger.ErrInvalidDigest):
		return &APIError{Code: CodeValidation, Message: "invalid data hash", RecoveryHint: "Use hex of at most 32 bytes"}

	case errors.Is(err, funding.ErrConflict):
		return &APIError{Code: CodeConflict, Message: "campaign modified by another call", RecoveryHint: "Reload and retry"}
	case errors.Is(err, journal.ErrIntegrity):
		return &APIError{Code: CodeIntegrity, Message: "journal does not verify"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

// outcome labels a call result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if apiErr := MapError(err); apiErr != nil {
		return apiErr.Code
	}
	return CodeInternal
}
