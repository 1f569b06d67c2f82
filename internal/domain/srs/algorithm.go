package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

const day = 24 * time.Hour

// nextState computes the card that results from grading card at now.
//
// The input card is never modified. The returned card has Reviews incremented,
// LastReviewedAt set to now and a DueDate derived from the new step or interval.
// Ease factor and interval are clamped on the way out, so the invariants
// MinEaseFactor <= EaseFactor and 0 <= Interval <= MaxInterval hold even when
// the input card was already out of range.
func nextState(card domain.Card, grade domain.Grade, now time.Time, params *Params) (domain.Card, error) {
	if !grade.IsValid() {
		return domain.Card{}, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}

	next := card.Clone()

	switch card.State {
	case domain.StateNew, domain.StateLearning, domain.StateRelearning:
		applyLearning(&next, grade, now, params)
	case domain.StateReview:
		applyReview(&next, grade, now, params)
	default:
		return domain.Card{}, fmt.Errorf("%w: %d", domain.ErrInvalidState, int(card.State))
	}

	next.EaseFactor = clampEase(next.EaseFactor, params)
	next.Reviews = card.Reviews + 1
	next.LastReviewedAt = now

	return next, nil
}

// applyLearning handles cards working through a step table.
//
// New and Learning cards use the learning steps; Relearning cards use the
// relearning steps. Hard advances exactly like Good and Easy skips every
// remaining step.
func applyLearning(card *domain.Card, grade domain.Grade, now time.Time, params *Params) {
	steps := params.stepsFor(card.State)
	wasNew := card.State == domain.StateNew
	if wasNew {
		card.State = domain.StateLearning
		card.EaseFactor = params.StartingEaseFactor
	}

	switch grade {
	case domain.GradeAgain:
		enterStep(card, 0, steps, now)

	case domain.GradeHard, domain.GradeGood:
		if wasNew {
			// A new card enters the table at its first step.
			enterStep(card, 0, steps, now)
			return
		}
		nextStep := card.Step + 1
		if nextStep >= len(steps) {
			graduate(card, params.GraduatingInterval, now, params)
			return
		}
		enterStep(card, nextStep, steps, now)

	case domain.GradeEasy:
		graduate(card, params.EasyInterval, now, params)
	}
}

// applyReview handles graduated cards on the day-based schedule.
func applyReview(card *domain.Card, grade domain.Grade, now time.Time, params *Params) {
	switch grade {
	case domain.GradeAgain:
		card.Lapses++
		card.EaseFactor = clampEase(card.EaseFactor-params.AgainPenalty, params)
		card.State = domain.StateRelearning
		enterStep(card, 0, params.RelearningSteps, now)
		return

	case domain.GradeHard:
		card.EaseFactor = clampEase(card.EaseFactor-params.HardPenalty, params)
		card.Interval = roundInterval(float64(card.Interval) * params.HardMultiplier)

	case domain.GradeGood:
		card.EaseFactor = clampEase(card.EaseFactor, params)
		card.Interval = roundInterval(float64(card.Interval) * card.EaseFactor)

	case domain.GradeEasy:
		card.EaseFactor = clampEase(card.EaseFactor+params.EasyBonus, params)
		card.Interval = roundInterval(float64(card.Interval) * card.EaseFactor * params.EasyMultiplier)
	}

	// A graduated card always waits at least a day.
	card.Interval = clampInterval(max(card.Interval, 1), params)
	card.Step = 0
	card.DueDate = now.Add(time.Duration(card.Interval) * day)
}

// enterStep places a card on a sub-day learning step.
func enterStep(card *domain.Card, step int, steps []time.Duration, now time.Time) {
	if step >= len(steps) {
		step = len(steps) - 1
	}
	card.Step = step
	card.Interval = 0
	card.DueDate = now.Add(steps[step])
}

// graduate moves a card into Review with the given interval in days.
func graduate(card *domain.Card, interval int, now time.Time, params *Params) {
	card.State = domain.StateReview
	card.Step = 0
	card.Interval = clampInterval(interval, params)
	card.DueDate = now.Add(time.Duration(card.Interval) * day)
}

func clampEase(ease float64, params *Params) float64 {
	if math.IsNaN(ease) || ease < params.MinEaseFactor {
		return params.MinEaseFactor
	}
	return ease
}

func clampInterval(interval int, params *Params) int {
	return min(max(interval, 0), params.MaxInterval)
}

// roundInterval rounds half away from zero and saturates instead of overflowing.
func roundInterval(days float64) int {
	r := math.Round(days)
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}
