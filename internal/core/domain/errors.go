package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a telemhist error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "TH-HIST-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument, such as a capacity
	// below 1 or a malformed request payload.
	ErrInvalidArgument = NewDomainError("TH-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("TH-ARG-1002", "missing required argument")
)

// ============================================================================
// History Errors (HIST)
// ============================================================================

var (
	// ErrRecordNotFound indicates the requested slot has never been written,
	// or was deleted by a capacity shrink.
	ErrRecordNotFound = NewDomainError("TH-HIST-4040", "record not found")

	// ErrNotAvailable indicates the index has no record within tolerance of
	// the requested timestamp, or a page was aborted mid-stream.
	ErrNotAvailable = NewDomainError("TH-HIST-5030", "history not available")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStorageFailure indicates an I/O error on persist, load or delete.
	ErrStorageFailure = NewDomainError("TH-SYS-5001", "storage failure")

	// ErrStoreClosed indicates the record store has been shut down.
	ErrStoreClosed = NewDomainError("TH-SYS-5031", "record store closed")
)

// ============================================================================
// Link Errors (LINK)
// ============================================================================

var (
	// ErrIllegalSubservice indicates an unknown sub-service selector byte.
	ErrIllegalSubservice = NewDomainError("TH-LINK-4000", "illegal subservice")

	// ErrMalformedRequest indicates a request payload too short for its
	// sub-service.
	ErrMalformedRequest = NewDomainError("TH-LINK-4001", "malformed request payload")
)
