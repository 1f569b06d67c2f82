package deck

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Stats holds card counts for a deck at a point in time.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"` // Learning + Relearning
	Due      int `json:"due"`      // any non-New state with due date <= now
	Review   int `json:"review"`
}

// ComputeStats counts cards by state and due-ness at now.
// It is idempotent: identical input and time give identical counts.
func ComputeStats(cards []domain.Card, now time.Time) Stats {
	stats := Stats{Total: len(cards)}
	for _, c := range cards {
		switch {
		case IsNew(c):
			stats.New++
		case IsLearning(c):
			stats.Learning++
		case IsReview(c):
			stats.Review++
		}
		if IsDue(c, now) {
			stats.Due++
		}
	}
	return stats
}

// Calculator computes Stats against an injected clock.
type Calculator struct {
	clock domain.Clock
}

// NewCalculator creates a Calculator. A nil clock falls back to domain.SystemClock.
func NewCalculator(clock domain.Clock) *Calculator {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &Calculator{clock: clock}
}

// Compute returns the stats for cards at the calculator's current time.
func (c *Calculator) Compute(cards []domain.Card) Stats {
	return ComputeStats(cards, c.clock())
}
