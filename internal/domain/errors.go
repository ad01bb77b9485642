// Package domain defines the core types, ports, and errors of the dashboard.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input, including physical inputs the
// radial-velocity model cannot evaluate.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError indicates the remote catalog service did not deliver a usable
// response: a non-200 status, a transport failure, a timeout, or a body that
// could not be decoded.
type UpstreamError struct {
	Message    string
	StatusCode int // 0 when no response was received
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrUpstream creates an UpstreamError for the given HTTP status with a
// formatted message.
func ErrUpstream(status int, format string, args ...interface{}) *UpstreamError {
	return &UpstreamError{StatusCode: status, Message: fmt.Sprintf(format, args...)}
}
