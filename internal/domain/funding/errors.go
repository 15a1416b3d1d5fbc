package funding

import (
	"errors"
	"fmt"
)

var (
	// ErrCampaignNotFound indicates the campaign doesn't exist.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrProjectNotFound indicates the funded project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrContributionNotFound indicates the caller never contributed.
	ErrContributionNotFound = errors.New("contribution not found")
	// ErrInvalidGoal indicates a zero or oversized goal.
	ErrInvalidGoal = errors.New("invalid campaign goal")
	// ErrInvalidAmount indicates a zero contribution or one that would overflow.
	ErrInvalidAmount = errors.New("invalid contribution amount")
	// ErrAlreadyRefunded indicates the contribution has been returned.
	ErrAlreadyRefunded = errors.New("contribution already refunded")
	// ErrUnauthorized indicates the caller is not the campaign beneficiary.
	ErrUnauthorized = errors.New("caller is not the beneficiary")
	// ErrInvalidTransition indicates the campaign is not in a status that allows the operation.
	ErrInvalidTransition = errors.New("invalid campaign state transition")
	// ErrCampaignNotActive indicates the campaign has closed.
	ErrCampaignNotActive = fmt.Errorf("campaign not active: %w", ErrInvalidTransition)
	// ErrConflict indicates the campaign changed during the call.
	ErrConflict = errors.New("campaign modified concurrently")
)
