package errors

import "fmt"

// AppError represents a domain-specific error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates an error for malformed local input.
// Validation errors are never retried.
func NewValidationError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewPersistenceError creates an error for ledger, file, or store failures.
func NewPersistenceError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewDomainError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}
