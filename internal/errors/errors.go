// Package errors provides standardized domain errors with codes for the PageTurn API.
//
// Usage:
//
//	// In services - return typed errors
//	if usernameTaken {
//	    return errors.DuplicateUsername("username is already in use")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeDuplicateUsername  Code = "DUPLICATE_USERNAME"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeInvalidUsername    Code = "INVALID_USERNAME"
	CodeInvalidPassword    Code = "INVALID_PASSWORD"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeMissingRating      Code = "MISSING_RATING"
	CodeMissingBody        Code = "MISSING_BODY"
	CodeValidation         Code = "VALIDATION"
	CodeInternal           Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateUsername, CodeDuplicateEmail:
		return http.StatusConflict
	case CodeInvalidCredentials, CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidUsername, CodeInvalidPassword, CodeMissingRating, CodeMissingBody, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicateUsername  = &Error{Code: CodeDuplicateUsername, Message: "username already in use"}
	ErrDuplicateEmail     = &Error{Code: CodeDuplicateEmail, Message: "email already registered"}
	ErrInvalidUsername    = &Error{Code: CodeInvalidUsername, Message: "invalid username"}
	ErrInvalidPassword    = &Error{Code: CodeInvalidPassword, Message: "invalid password"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrUnauthenticated    = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrMissingRating      = &Error{Code: CodeMissingRating, Message: "rating is required"}
	ErrMissingBody        = &Error{Code: CodeMissingBody, Message: "review text is required"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateUsername creates a duplicate username error.
func DuplicateUsername(msg string) *Error {
	return &Error{Code: CodeDuplicateUsername, Message: msg}
}

// DuplicateEmail creates a duplicate email error.
func DuplicateEmail(msg string) *Error {
	return &Error{Code: CodeDuplicateEmail, Message: msg}
}

// InvalidUsername creates an invalid username error.
func InvalidUsername(msg string) *Error {
	return &Error{Code: CodeInvalidUsername, Message: msg}
}

// InvalidPassword creates an invalid password error.
func InvalidPassword(msg string) *Error {
	return &Error{Code: CodeInvalidPassword, Message: msg}
}

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: msg}
}

// Unauthenticated creates an authentication required error.
func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// MissingRating creates a missing rating error.
func MissingRating(msg string) *Error {
	return &Error{Code: CodeMissingRating, Message: msg}
}

// MissingBody creates a missing review text error.
func MissingBody(msg string) *Error {
	return &Error{Code: CodeMissingBody, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
