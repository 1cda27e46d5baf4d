// Package services applies the authorization policy and talks to the
// database and file storage on behalf of the HTTP controllers.
package services

import (
	"errors"

	"github.com/ecoreport/api-go/policy"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = policy.ErrForbidden
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError describes a missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// kindError carries a client-facing message while still matching one of the
// sentinel kinds above with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrUserNotFound        error = &kindError{ErrNotFound, "user not found"}
	ErrReportNotFound      error = &kindError{ErrNotFound, "report not found"}
	ErrImageNotFound       error = &kindError{ErrNotFound, "image not found"}
	ErrEmailTaken          error = &kindError{ErrConflict, "email already registered"}
	ErrInvalidCredentials  error = &kindError{ErrUnauthorized, "invalid email or password"}
	ErrAccountGone         error = &kindError{ErrUnauthorized, "account no longer exists"}
	ErrAdminRequired       error = &kindError{ErrForbidden, "admin privileges required"}
	ErrImageFileNotPresent error = &kindError{ErrNotFound, "image file not found"}
)
