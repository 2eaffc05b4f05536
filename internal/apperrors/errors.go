// Package apperrors defines the typed failure taxonomy shared by services
// and handlers. Every failure that crosses the service boundary carries a
// stable machine code so callers can render or act on it without string
// matching.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error codes
const (
	CodeAuthorizationDenied    = "AUTHORIZATION_DENIED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeStaleWrite             = "STALE_WRITE"
	CodeReconciliationConflict = "RECONCILIATION_CONFLICT"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeResourceNotFound       = "RESOURCE_NOT_FOUND"
	CodeDatabaseError          = "DATABASE_ERROR"
)

// Error is a typed application error with a stable machine code
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// AuthorizationDenied reports a missing capability
func AuthorizationDenied(capability string) *Error {
	return &Error{
		Code:    CodeAuthorizationDenied,
		Message: fmt.Sprintf("missing required capability %q", capability),
	}
}

// InvalidTransition reports an unreachable stage change
func InvalidTransition(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move visit from %s to %s", from, to),
	}
}

// StaleWrite reports a lost read-modify-write race
func StaleWrite(resource string) *Error {
	return &Error{
		Code:    CodeStaleWrite,
		Message: fmt.Sprintf("%s changed since it was read, please refresh", resource),
	}
}

// ReconciliationConflict reports a webhook that cannot be applied
func ReconciliationConflict(reference, reason string) *Error {
	return &Error{
		Code:    CodeReconciliationConflict,
		Message: fmt.Sprintf("transaction %s: %s", reference, reason),
	}
}

// NotFound reports a missing resource
func NotFound(resource string) *Error {
	return &Error{
		Code:    CodeResourceNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Validation reports invalid input
func Validation(message string) *Error {
	return &Error{Code: CodeValidationError, Message: message}
}

// Database wraps a store failure
func Database(err error) *Error {
	return &Error{Code: CodeDatabaseError, Message: "database operation failed", Err: err}
}

// CodeOf extracts the machine code from any error, defaulting to DATABASE_ERROR
// for untyped failures so nothing opaque crosses the HTTP boundary.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeDatabaseError
}

// HTTPStatus maps an error to the response status for the HTTP layer
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeAuthorizationDenied:
		return http.StatusForbidden
	case CodeInvalidTransition, CodeValidationError:
		return http.StatusBadRequest
	case CodeStaleWrite:
		return http.StatusConflict
	case CodeResourceNotFound:
		return http.StatusNotFound
	case CodeReconciliationConflict:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given code
func Is(err error, code string) bool {
	return CodeOf(err) == code
}
