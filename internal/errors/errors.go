// Package errors defines the stable error taxonomy for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseError indicates a front-end could not parse a source file.
	// Localized to one file; the slicer degrades to partial or unparsed
	// slicing instead of aborting the run.
	ParseError ErrorCode = "PARSE_ERROR"
	// UnsupportedLanguage indicates no front-end is registered for the
	// declared language. The file is skipped and recorded.
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// DetectorFailure indicates a detector port call failed. Transient:
	// retried up to the configured bound, terminal after exhaustion.
	DetectorFailure ErrorCode = "DETECTOR_FAILURE"
	// Timeout indicates a per-call or per-run deadline elapsed
	Timeout ErrorCode = "TIMEOUT"
	// InvariantViolation indicates internal bookkeeping is broken
	// (e.g. localizing a finding whose slice is missing). Fatal; never
	// swallowed.
	InvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// GuardianError represents a pipeline error with a stable code
type GuardianError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new GuardianError
func New(code ErrorCode, message string, cause error) *GuardianError {
	return &GuardianError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new GuardianError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GuardianError {
	return &GuardianError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *GuardianError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GuardianError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *GuardianError) WithDetails(details interface{}) *GuardianError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, or InternalError if err is not
// a GuardianError.
func CodeOf(err error) ErrorCode {
	var ge *GuardianError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
