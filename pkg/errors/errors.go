// Package errors provides structured error types for wrestlerank.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API, and the engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NO_DATA: A comparison group with nothing to rank
//   - NOT_FOUND: Resource not found
//   - ALL_RUNS_FAILED, INTERNAL_*: Failures inside an optimization request
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMatrix, "weight at (%d,%d) is negative", i, j)
//	if errors.Is(err, errors.ErrCodeNoData) {
//	    // Skip this group
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode group %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidMatrix Code = "INVALID_MATRIX"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidOrder  Code = "INVALID_ORDER"
	ErrCodeInvalidGroup  Code = "INVALID_GROUP"

	// A comparison group with zero competitors. Callers treat this as
	// "skip this group" rather than a fatal condition.
	ErrCodeNoData Code = "NO_DATA"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Optimization errors
	ErrCodeAllRunsFailed Code = "ALL_RUNS_FAILED"

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

// IsSkippable reports whether err means the group should be skipped rather
// than treated as a failure.
func IsSkippable(err error) bool {
	return Is(err, ErrCodeNoData)
}
