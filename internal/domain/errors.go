package domain

import "errors"

// Sentinel errors shared across services. Upstream store/mailer failures are
// wrapped with %w instead and surface as generic internal errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyRegistered  = errors.New("attendee already registered")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
)
