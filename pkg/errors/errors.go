// Package errors provides structured error types for fwmeta.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure taxonomy of a package scan:
//   - NOT_FOUND: a concrete package path does not exist
//   - MALFORMED_ARCHIVE: a stream that should be an archive cannot be opened as one
//   - DETECTION_FAILED: the binary detector could not classify a boot file
//   - VALIDATION_MISMATCH: binary-derived and filename-derived metadata disagree
//   - PROVIDER_FAILURE: an enrichment provider rejected its input
//
// Traversal-level codes (NOT_FOUND, MALFORMED_ARCHIVE) end the contribution of one
// top-level path. PROVIDER_FAILURE ends one record. VALIDATION_MISMATCH is only
// ever logged.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid boot file name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedArchive, origErr, "open %s", name)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Traversal errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeMalformedArchive Code = "MALFORMED_ARCHIVE"

	// Record errors
	ErrCodeDetection          Code = "DETECTION_FAILED"
	ErrCodeValidationMismatch Code = "VALIDATION_MISMATCH"
	ErrCodeProviderFailure    Code = "PROVIDER_FAILURE"

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
// The outermost *Error wins, so a PROVIDER_FAILURE wrapping a NOT_FOUND
// reports PROVIDER_FAILURE only.
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

// IsTraversal reports whether err ends the contribution of a whole
// top-level path rather than a single record.
func IsTraversal(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeMalformedArchive:
		return true
	}
	return false
}

// IsContext reports whether err comes from a cancelled or expired context.
func IsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
