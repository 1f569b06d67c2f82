package study

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound indicates that no live session or stored report
	// exists for the given session ID.
	ErrSessionNotFound = errors.New("study session not found")

	// ErrSessionComplete indicates that the session has no cards left to show.
	ErrSessionComplete = errors.New("study session complete")

	// ErrNoCards indicates that an import request carried no cards.
	ErrNoCards = errors.New("no cards to import")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "answer_card")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
