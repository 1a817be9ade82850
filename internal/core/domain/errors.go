package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access denied")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	ErrMemberNotFound  = errors.New("member not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrPollNotFound    = errors.New("poll not found")
	ErrPollClosed      = errors.New("poll is expired, voting is closed")
	ErrPackageNotFound = errors.New("meal package not found")
)

// ValidationError carries a caller-facing message for malformed input.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
