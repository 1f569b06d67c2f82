package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidGrade is returned when a grade is outside Again..Easy.
	// Grades are never coerced to a default.
	ErrInvalidGrade = errors.New("invalid grade")

	// ErrInvalidState is returned when a card state is not one of the defined states.
	ErrInvalidState = errors.New("invalid card state")
)
