// Package errors provides typed errors for build-tracer
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a configuration error
	ErrConfig ErrorType = iota
	// ErrValidation indicates an input validation error
	ErrValidation
	// ErrPrecondition indicates a build could not be processed at all
	ErrPrecondition
	// ErrStats indicates the statistics store could not be read
	ErrStats
	// ErrExport indicates a tracer client could not be created
	ErrExport
	// ErrTransport indicates an event ingress connection failed
	ErrTransport
)

// TracerError is the base error type for all build-tracer errors
type TracerError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *TracerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", errorTypeString(e.Type), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", errorTypeString(e.Type), e.Message)
}

// Unwrap returns the underlying cause
func (e *TracerError) Unwrap() error {
	return e.Cause
}

// New creates a new TracerError
func New(errType ErrorType, message string, cause error) *TracerError {
	return &TracerError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *TracerError) WithContext(key string, value interface{}) *TracerError {
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var tErr *TracerError
	if err == nil {
		return false
	}
	if errors.As(err, &tErr) {
		return tErr.Type == errType
	}
	return false
}

// IsRetryable returns true if the error is transient and retryable.
// Only ingress transports reconnect; span export is fire-and-forget.
func IsRetryable(err error) bool {
	var tErr *TracerError
	if !errors.As(err, &tErr) {
		return false
	}
	return tErr.Type == ErrTransport
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrValidation:
		return "VALIDATION"
	case ErrPrecondition:
		return "PRECONDITION"
	case ErrStats:
		return "STATS"
	case ErrExport:
		return "EXPORT"
	case ErrTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *TracerError {
	return New(ErrConfig, message, cause)
}

// ValidationError creates a validation error
func ValidationError(message string, cause error) *TracerError {
	return New(ErrValidation, message, cause)
}

// PreconditionError creates a precondition violation error
func PreconditionError(message string, cause error) *TracerError {
	return New(ErrPrecondition, message, cause)
}

// StatsError creates a statistics store error
func StatsError(message string, cause error) *TracerError {
	return New(ErrStats, message, cause)
}

// ExportError creates a tracer client error
func ExportError(message string, cause error) *TracerError {
	return New(ErrExport, message, cause)
}

// TransportError creates an ingress transport error
func TransportError(message string, cause error) *TracerError {
	return New(ErrTransport, message, cause)
}
