// Package errors provides structured error types for linkscope.
//
// Every failure that can reach a user (CLI or HTTP API) carries a
// machine-readable [Code] and a human-readable message. The API layer maps
// codes to HTTP statuses and always responds with {"error": message}.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - *_IN_PROGRESS: Conflicting concurrent operation
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidAttribute, "unknown node attribute %q", key)
//	if errors.Is(err, errors.ErrCodeInvalidAttribute) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidUpload, origErr, "parse %s", filename)
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidUpload     Code = "INVALID_UPLOAD"
	ErrCodeInvalidGraph      Code = "INVALID_GRAPH"
	ErrCodeInvalidAttribute  Code = "INVALID_ATTRIBUTE"
	ErrCodeInvalidEvent      Code = "INVALID_EVENT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Parse failures of otherwise well-formed uploads
	ErrCodeParse Code = "PARSE_ERROR"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeGraphNotFound   Code = "GRAPH_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Conflicts
	ErrCodeUploadInProgress Code = "UPLOAD_IN_PROGRESS"
	ErrCodeStaleGeneration  Code = "STALE_GENERATION"

	// Infrastructure errors
	ErrCodeStorage     Code = "STORAGE_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error. Message is safe to show to users; Cause is not.
type Error struct {
	Code    Code
	Message string
	Cause   error

	// RetryAfter is set on RATE_LIMITED errors and becomes the
	// Retry-After header.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error whose cause is err.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Limited creates a RATE_LIMITED error asking the client to wait.
func Limited(retryAfter time.Duration, format string, args ...any) *Error {
	e := New(ErrCodeRateLimited, format, args...)
	e.RetryAfter = retryAfter
	return e
}

// as finds the outermost *Error in err's chain.
func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost coded error in err's chain,
// or "" for uncoded errors.
func GetCode(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for coded
// errors and err.Error() otherwise.
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

// RetryAfter returns how long a rate-limited client should wait, or 0.
func RetryAfter(err error) time.Duration {
	if e, ok := as(err); ok {
		return e.RetryAfter
	}
	return 0
}

// HTTPStatus maps an error to the API response status. Parse failures of a
// supported format are server errors, and so is anything uncoded.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidUpload, ErrCodeInvalidGraph,
		ErrCodeInvalidAttribute, ErrCodeInvalidEvent, ErrCodeInvalidConfig,
		ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeGraphNotFound, ErrCodeSessionNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUploadInProgress, ErrCodeStaleGeneration:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
