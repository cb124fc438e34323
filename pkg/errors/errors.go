package errors

import (
	"fmt"
)

// ErrorType classifies an AppError so the HTTP layer can map it to a
// status code without inspecting messages.
type ErrorType string

const (
	// ErrorTypeNotFound means the requested resource does not exist.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation means the request was malformed.
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal means something failed inside the service.
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal means an upstream dependency returned an error.
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeUnavailable means a dependency is down or not configured.
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError carries a classification alongside the message and cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewInternalError creates an internal error wrapping its cause.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// NewExternalError creates an upstream dependency error.
func NewExternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExternal, Message: message, Err: err}
}

// NewUnavailableError creates an unavailable dependency error.
func NewUnavailableError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnavailable, Message: message}
}
