package session

import "errors"

var (
	// ErrInvalidTransition is returned when a Runner method is called in a
	// phase that does not allow it, e.g. answering before revealing.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrInvalidLimits is returned when session limits fail validation.
	ErrInvalidLimits = errors.New("invalid session limits")
)
