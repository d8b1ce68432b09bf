// Package errors provides structured error types for lifeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API and the layout engine
//   - Machine-readable error codes for programmatic handling
//   - Reporting which input event caused a render to fail
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_SEQUENCE / UNKNOWN_ACTOR: Fatal layout failures
//   - NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownActor, "actor %q was never declared", id)
//	if errors.Is(err, errors.ErrCodeUnknownActor) {
//	    // Handle a bad event list
//	}
//
//	// Attach the offending event
//	return errors.AtEvent(i, "message", err)
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
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Layout errors. Both are fatal to a render.
	ErrCodeMalformedSequence Code = "MALFORMED_SEQUENCE"
	ErrCodeUnknownActor      Code = "UNKNOWN_ACTOR"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

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
	var ev *EventError
	if errors.As(err, &ev) {
		return fmt.Sprintf("event %d (%s): %s", ev.Index, ev.Event, UserMessage(ev.Cause))
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// EventError reports the input event at which a render stopped.
type EventError struct {
	Index int    // Position of the event in the input list
	Event string // Event kind, e.g. "message" or "section_end"
	Cause error
}

// AtEvent wraps cause with the index and kind of the offending event.
func AtEvent(index int, event string, cause error) *EventError {
	return &EventError{Index: index, Event: event, Cause: cause}
}

// Error implements the error interface.
func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s): %v", e.Index, e.Event, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EventError) Unwrap() error { return e.Cause }

// EventIndex returns the index of the failing event and true when err
// carries an *EventError.
func EventIndex(err error) (int, bool) {
	var e *EventError
	if errors.As(err, &e) {
		return e.Index, true
	}
	return 0, false
}
