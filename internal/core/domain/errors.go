package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidRange       = errors.New("start time must be before end time")
	ErrNothingToUpdate    = errors.New("no fields to update")
	ErrConflict           = errors.New("a reservation already exists in that time slot")
	ErrSlotBusy           = errors.New("time slot is being booked by another request")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("email already registered")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomUnavailable     = errors.New("room is not available for booking")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ErrUnauthorized is the parent of every token rejection. The concrete
// reasons below wrap it, so errors.Is(err, ErrUnauthorized) holds for all.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrTokenRevoked   = fmt.Errorf("%w: revoked", ErrUnauthorized)
	ErrTokenInvalid   = fmt.Errorf("%w: invalid_or_expired", ErrUnauthorized)
	ErrMissingSubject = fmt.Errorf("%w: missing_subject", ErrUnauthorized)
)

// UnauthorizedReason returns the short machine reason of a token rejection,
// or "" when err is not an authorization failure.
func UnauthorizedReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid_or_expired"
	case errors.Is(err, ErrMissingSubject):
		return "missing_subject"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	}
	return ""
}
