// Package apperror defines the typed failures raised by services and handlers.
// The HTTP error handler translates each Kind to a status code; only Message
// and Details are ever shown to clients, the Cause is kept for logs.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how they surface at the HTTP boundary.
type Kind string

const (
	KindValidation   Kind = "validation_error" // 422
	KindUnauthorized Kind = "unauthorized"     // 401
	KindConflict     Kind = "conflict"         // 409
	KindNotFound     Kind = "not_found"        // 404
	KindInternal     Kind = "server_error"     // 500
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"type"`
	Message string `json:"message"`
}

// Error is a structured application error.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// Unauthorized is used for every authentication failure so callers cannot
// tell a bad signature from an expired token or a disabled account.
func Unauthorized(msg string, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Cause: cause}
}

func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Cause: cause}
}

func NotFound(msg string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Cause: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}
