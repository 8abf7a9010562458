package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials is returned when login fails, without revealing
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// ErrRegistrationRestricted is returned when an unauthenticated caller tries
// to register after the first admin account exists.
var ErrRegistrationRestricted = errors.New("Registration is restricted. Please login as admin.")

// ErrNotAdmin is returned when an authenticated non-admin tries to register
// a new account.
var ErrNotAdmin = errors.New("Only administrators can create new users")

// ValidationError collects the field-level messages of a rejected payload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// DuplicateFieldError reports a write rejected by a unique index.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicateFieldError reports whether err is a DuplicateFieldError.
func IsDuplicateFieldError(err error) bool {
	var de *DuplicateFieldError
	return errors.As(err, &de)
}
