// Package errors provides the LeafNote error taxonomy.
//
// Every failure the application surfaces belongs to one of four families:
// auth (NotFound, BadCredential, DuplicateUsername), session
// (Unauthenticated, Expired), access (NotOwner) and store (Unavailable,
// Conflict). Validation and Internal cover input and programming errors.
//
// Usage:
//
//	// In services - return typed errors
//	if taken {
//	    return errors.DuplicateUsername("username already taken")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrBadCredential) {
//	    renderLogin(w, http.StatusUnauthorized)
//	    return
//	}
//
//	// Or switch on the family
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) && domainErr.Code.Kind() == errors.KindStore {
//	    renderUnavailable(w)
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
	CodeNotFound          Code = "NOT_FOUND"
	CodeBadCredential     Code = "BAD_CREDENTIAL"
	CodeDuplicateUsername Code = "DUPLICATE_USERNAME"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeExpired           Code = "SESSION_EXPIRED"
	CodeNotOwner          Code = "NOT_OWNER"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeConflict          Code = "CONFLICT"
	CodeValidation        Code = "VALIDATION"
	CodeInternal          Code = "INTERNAL"
)

// Kind groups codes into the families of the taxonomy.
type Kind string

// Error families.
const (
	KindAuth     Kind = "auth"
	KindSession  Kind = "session"
	KindAccess   Kind = "access"
	KindStore    Kind = "store"
	KindInput    Kind = "input"
	KindInternal Kind = "internal"
)

// Kind returns the family the code belongs to.
func (c Code) Kind() Kind {
	switch c {
	case CodeNotFound, CodeBadCredential, CodeDuplicateUsername:
		return KindAuth
	case CodeUnauthenticated, CodeExpired:
		return KindSession
	case CodeNotOwner:
		return KindAccess
	case CodeUnavailable, CodeConflict:
		return KindStore
	case CodeValidation:
		return KindInput
	default:
		return KindInternal
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error code.
// NotOwner maps to 404 so that non-owners cannot confirm a note exists.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeNotOwner:
		return http.StatusNotFound
	case CodeDuplicateUsername, CodeConflict:
		return http.StatusConflict
	case CodeUnauthenticated, CodeBadCredential, CodeExpired:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
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

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrBadCredential     = &Error{Code: CodeBadCredential, Message: "bad credential"}
	ErrDuplicateUsername = &Error{Code: CodeDuplicateUsername, Message: "username already taken"}
	ErrUnauthenticated   = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
	ErrExpired           = &Error{Code: CodeExpired, Message: "session expired"}
	ErrNotOwner          = &Error{Code: CodeNotOwner, Message: "not owner"}
	ErrUnavailable       = &Error{Code: CodeUnavailable, Message: "store unavailable"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadCredential creates a bad credential error.
func BadCredential(msg string) *Error {
	return &Error{Code: CodeBadCredential, Message: msg}
}

// DuplicateUsername creates a duplicate username error.
func DuplicateUsername(msg string) *Error {
	return &Error{Code: CodeDuplicateUsername, Message: msg}
}

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// Expired creates a session expired error.
func Expired(msg string) *Error {
	return &Error{Code: CodeExpired, Message: msg}
}

// NotOwner creates a not owner error.
func NotOwner(msg string) *Error {
	return &Error{Code: CodeNotOwner, Message: msg}
}

// Unavailable creates a store unavailable error.
func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
