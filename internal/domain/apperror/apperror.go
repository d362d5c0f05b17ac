// Package apperror defines the error kinds returned by the onboarding workflow.
package apperror

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Workflow errors
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeCommentRequired   Code = "COMMENT_REQUIRED"
	CodeAlreadyAssigned   Code = "ALREADY_ASSIGNED"
	CodeInvalidKind       Code = "INVALID_KIND"
	CodeApplicationLocked Code = "APPLICATION_LOCKED"
	CodeStorageFailure    Code = "STORAGE_FAILURE"

	// Upload and account errors
	CodeUnsupportedFile Code = "UNSUPPORTED_FILE"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
)

// HTTPStatus maps an error kind to the HTTP status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidTransition, CodeApplicationLocked:
		return http.StatusConflict
	case CodeAlreadyAssigned, CodeConflict:
		return http.StatusConflict
	case CodeCommentRequired, CodeInvalidKind:
		return http.StatusUnprocessableEntity
	case CodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case CodeStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may retry the operation automatically.
// Only storage failures qualify; every other kind is a business outcome.
func (c Code) Retryable() bool {
	return c == CodeStorageFailure
}

// Error is a workflow error carrying its kind.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates an error of the given kind.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Storage wraps a persistence error as a retryable storage failure.
func Storage(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(CodeStorageFailure, message, err)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so sentinel
// values keep working with errors.Is after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// GetCode extracts the kind from any error.
// Returns CodeUnknown if the error is not a workflow error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified kind.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// Message returns the user-facing message of a workflow error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
