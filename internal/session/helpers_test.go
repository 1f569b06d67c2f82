package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

var t0 = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

func newCard() domain.Card {
	return domain.Card{
		ID:         uuid.New(),
		State:      domain.StateNew,
		EaseFactor: domain.DefaultEaseFactor,
		DueDate:    t0.Add(-time.Hour),
	}
}

func dueReview(ago time.Duration) domain.Card {
	return domain.Card{
		ID:         uuid.New(),
		State:      domain.StateReview,
		EaseFactor: domain.DefaultEaseFactor,
		Interval:   3,
		DueDate:    t0.Add(-ago),
		Reviews:    4,
	}
}

func dueLearning() domain.Card {
	return domain.Card{
		ID:         uuid.New(),
		State:      domain.StateLearning,
		EaseFactor: domain.DefaultEaseFactor,
		Step:       1,
		DueDate:    t0.Add(-time.Minute),
		Reviews:    1,
	}
}

func ids(cards []domain.Card) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// tickingClock advances by step on every call.
func tickingClock(start time.Time, step time.Duration) domain.Clock {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}
