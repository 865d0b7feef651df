// Package apperr defines the error taxonomy shared by all services.
//
// The first four sentinels are returned to the caller for user-facing
// messaging. Store failures are wrapped with Persistence so handlers can
// surface a generic failure without leaking driver details.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no matching conversation, message or settings row.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the resource exists but belongs to another user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict means an external session id is already in use.
	ErrConflict = errors.New("conflict")
	// ErrValidation covers out-of-range temperature, unrecognized role and
	// empty or unknown model names.
	ErrValidation = errors.New("validation error")

	errPersistence = errors.New("persistence error")
)

// Persistence wraps an underlying store failure.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errPersistence, err)
}

// IsPersistence reports whether err is a wrapped store failure.
func IsPersistence(err error) bool {
	return errors.Is(err, errPersistence)
}

// Validationf builds a field-level validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
