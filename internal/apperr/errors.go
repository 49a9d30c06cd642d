// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailure         = errors.New("invalid login or password")
	ErrNotFound            = errors.New("record not found")
	ErrValidation          = errors.New("validation failed")
	ErrConcurrencyConflict = errors.New("record was changed by another user, reload and try again")
	ErrReferentialBlock    = errors.New("record is in use")
	ErrNotification        = errors.New("notification failed")
)

// Validation wraps ErrValidation with a field level message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Blocked wraps ErrReferentialBlock with a message the operator can act on.
func Blocked(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReferentialBlock, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound naming the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}
