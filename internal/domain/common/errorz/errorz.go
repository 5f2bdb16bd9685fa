package errorz

import (
	"errors"
	"fmt"
)

// Kinds. Every domain error wraps exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTransient       = errors.New("transient failure")
	ErrExternalFailure = errors.New("external failure")
	ErrInvalidInput    = errors.New("invalid input")
)

var (
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrClubNotFound         = fmt.Errorf("%w: club not found", ErrNotFound)
	ErrRequestNotFound      = fmt.Errorf("%w: club request not found", ErrNotFound)
	ErrEventNotFound        = fmt.Errorf("%w: event not found", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("%w: registration not found", ErrNotFound)
	ErrNotMember            = fmt.Errorf("%w: membership not found", ErrNotFound)
	ErrAnnouncementNotFound = fmt.Errorf("%w: announcement not found", ErrNotFound)

	ErrClubNameTaken        = fmt.Errorf("%w: club name already taken", ErrConflict)
	ErrAlreadyClubAdmin     = fmt.Errorf("%w: user already administers a club", ErrConflict)
	ErrAdminNotEligible     = fmt.Errorf("%w: user role cannot administer a club", ErrConflict)
	ErrPendingRequestExists = fmt.Errorf("%w: a pending club request already exists", ErrConflict)
	ErrRequestResolved      = fmt.Errorf("%w: club request already resolved", ErrConflict)
	ErrAlreadyMember        = fmt.Errorf("%w: already a member of this club", ErrConflict)
	ErrAlreadyRegistered    = fmt.Errorf("%w: already registered for this event", ErrConflict)
	ErrEventSoldOut         = fmt.Errorf("%w: event is sold out", ErrConflict)
	ErrCapacityBelowCount   = fmt.Errorf("%w: capacity is below the number of registrations", ErrConflict)
	ErrEmailTaken           = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyVerified      = fmt.Errorf("%w: email already verified", ErrConflict)
	ErrEventOver            = fmt.Errorf("%w: event has already started", ErrConflict)

	ErrForbidden          = fmt.Errorf("%w: forbidden", ErrUnauthorized)
	ErrNotClubAdmin       = fmt.Errorf("%w: only the club admin may do this", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrNotVerified        = fmt.Errorf("%w: email is not verified", ErrUnauthorized)

	ErrInvalidCode  = fmt.Errorf("%w: invalid or expired code", ErrInvalidInput)
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", ErrInvalidInput)

	ErrConcurrentUpdate = fmt.Errorf("%w: concurrent modification", ErrTransient)
	ErrTooManyRequests  = fmt.Errorf("%w: too many requests, try again later", ErrTransient)

	ErrAssetStore = fmt.Errorf("%w: asset storage failed", ErrExternalFailure)
	ErrEmailSend  = fmt.Errorf("%w: email delivery failed", ErrExternalFailure)
)

// Invalid returns an ErrInvalidInput error describing the rejected field.
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
