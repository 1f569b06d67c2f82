package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// ErrInvalidDays is returned when a postponement is shorter than one day.
var ErrInvalidDays = errors.New("postpone days must be at least 1")

// Scheduler applies grades to cards. It is safe for concurrent use because it
// holds no mutable state: params are copied at construction.
type Scheduler struct {
	params *Params
	clock  domain.Clock
}

// NewScheduler creates a Scheduler with the given params and clock.
// A nil clock falls back to domain.SystemClock.
func NewScheduler(params *Params, clock domain.Clock) (*Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = domain.SystemClock
	}
	return &Scheduler{
		params: params.clone(),
		clock:  clock,
	}, nil
}

// NewDefaultScheduler creates a Scheduler with default params and the system clock.
func NewDefaultScheduler() *Scheduler {
	s, err := NewScheduler(NewDefaultParams(), nil)
	if err != nil {
		// ALLOW-PANIC: default params are a compile-time constant set
		panic(fmt.Sprintf("default srs params are invalid: %v", err))
	}
	return s
}

// Params returns a copy of the scheduler's params.
func (s *Scheduler) Params() Params {
	return *s.params.clone()
}

// Now reports the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock()
}

// ComputeNextState grades card at the scheduler's current time.
// Returns domain.ErrInvalidGrade for a grade outside Again..Easy and
// domain.ErrInvalidState for an unknown card state.
func (s *Scheduler) ComputeNextState(card domain.Card, grade domain.Grade) (domain.Card, error) {
	return s.NextState(card, grade, s.clock())
}

// NextState grades card at an explicit time. It is a pure function of its inputs.
func (s *Scheduler) NextState(card domain.Card, grade domain.Grade, now time.Time) (domain.Card, error) {
	return nextState(card, grade, now, s.params)
}

// Preview returns the card that would result from each possible grade.
func (s *Scheduler) Preview(card domain.Card, now time.Time) (map[domain.Grade]domain.Card, error) {
	result := make(map[domain.Grade]domain.Card, len(domain.Grades))
	for _, g := range domain.Grades {
		next, err := nextState(card, g, now, s.params)
		if err != nil {
			return nil, err
		}
		result[g] = next
	}
	return result, nil
}

// Postpone pushes the card's due date forward by the given number of days.
// The card's state, interval and review count are left untouched.
func (s *Scheduler) Postpone(card domain.Card, days int, now time.Time) (domain.Card, error) {
	if days < 1 {
		return domain.Card{}, ErrInvalidDays
	}

	next := card.Clone()
	base := card.DueDate
	if base.Before(now) {
		base = now
	}
	next.DueDate = base.AddDate(0, 0, days)
	return next, nil
}
