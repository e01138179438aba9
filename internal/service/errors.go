package service

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrEventClosed            = errors.New("event is not open for registration")
	ErrDeadlinePassed         = errors.New("registration deadline has passed")
	ErrEventCompleted         = errors.New("event already completed")
	ErrAlreadyRegistered      = errors.New("you have already registered for this event")
	ErrPaymentFailed          = errors.New("payment not successful")
	ErrTeamSize               = errors.New("team size out of range")
	ErrNotEnoughSeats         = errors.New("not enough seats left")
	ErrRegistrationNotFound   = errors.New("registration not found")
	ErrAlreadyCancelled       = errors.New("registration is already cancelled")
	ErrCancellationNotAllowed = errors.New("cancellation is not allowed for this event")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrTicketInactive         = errors.New("ticket is no longer active")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrStatusRequired         = errors.New("status required")
	ErrEmailTaken             = errors.New("email already used")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidDeadline        = errors.New("invalid registration deadline")
)

// TeamSizeError reports the allowed range for a team-type event.
type TeamSizeError struct {
	Min int
	Max int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("team size must be between %d and %d", e.Min, e.Max)
}

func (e *TeamSizeError) Unwrap() error { return ErrTeamSize }
