// Package service implements the report lifecycle, employee management and
// authentication on top of the repositories.  Every error it returns falls
// into one of the kinds below; handlers translate kinds into HTTP statuses.
package service

import (
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/repository"
)

// Kinds shared with the storage layer.
var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrConflict
)

// ErrUnauthorized is the kind of every authentication failure.
var ErrUnauthorized = errors.New("unauthorized")

var (
	// ErrInvalidCredentials is returned for an unknown email and a wrong
	// password alike.
	ErrInvalidCredentials = &AuthError{Message: "invalid credentials"}
	ErrMissingToken       = &AuthError{Message: "missing token"}
	ErrInvalidToken       = &AuthError{Message: "invalid or expired token"}
)

// AuthError is an authentication failure with a client-facing message.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Is makes every AuthError match ErrUnauthorized.
func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// maxLen rejects values longer than the column that stores them.
func maxLen(field, s string, limit int) error {
	if utf8.RuneCountInString(s) > limit {
		return invalid(field, "must be at most "+strconv.Itoa(limit)+" characters")
	}
	return nil
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError is re-exported so callers need not import repository.
type StorageError = repository.StorageError
