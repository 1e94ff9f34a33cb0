// Package errors provides structured error types for vidtree.
//
// Every failure that crosses a package boundary (catalogue loading, option
// validation, cache backends, the HTTP API) is reported as an [*Error] carrying
// a machine-readable [Code]. The CLI prints the user message; the API maps the
// code to an HTTP status with [HTTPStatus].
//
// The layout engine in pkg/treemap never returns errors: empty or degenerate
// input produces an empty layout instead.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (HTTP 400)
//   - *NOT_FOUND: missing resources (HTTP 404)
//   - NETWORK_ERROR, TIMEOUT: cache backend transport failures (HTTP 502/504)
//   - INTERNAL_ERROR, UNSUPPORTED: everything else (HTTP 500/501)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWeightMode, "unknown mode %q", mode)
//	if errors.Is(err, errors.ErrCodeInvalidWeightMode) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open catalogue %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidWeightMode Code = "INVALID_WEIGHT_MODE"
	ErrCodeInvalidGroupBy    Code = "INVALID_GROUP_BY"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Transport errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
// Errors without a code are reported as 500.
func HTTPStatus(err error) int {
	code := GetCode(err)
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == ErrCodeNotFound, code == ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == ErrCodeNetwork:
		return http.StatusBadGateway
	case code == ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
