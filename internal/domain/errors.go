package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateEmail  = errors.New("email already in use")
)

// ErrInvalidCredentials is returned on failed login attempts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Coin ledger errors.
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidAdjustmentKind = errors.New("adjustment type must be manual_add or manual_subtract")
	ErrInsufficientBalance   = errors.New("insufficient coins to subtract")
)

// Winner declaration errors.
var (
	ErrTooManyWinners     = errors.New("more winners than the event allows")
	ErrUnregisteredWinner = errors.New("some selected students are not registered for this event")
	ErrEventCompleted     = errors.New("event already completed")
)

// Registration lifecycle errors.
var (
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("not registered for this event")
	ErrRegistrationClosed = errors.New("event registration deadline has passed")
)
