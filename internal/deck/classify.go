package deck

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// IsNew reports whether the card has never been graded.
func IsNew(c domain.Card) bool {
	return c.State == domain.StateNew
}

// IsLearning reports whether the card is working through learning or relearning steps.
func IsLearning(c domain.Card) bool {
	return c.State == domain.StateLearning || c.State == domain.StateRelearning
}

// IsReview reports whether the card is on the day-based review schedule.
func IsReview(c domain.Card) bool {
	return c.State == domain.StateReview
}

// IsDue reports whether a card that has been seen before is eligible at now.
// New cards are never "due"; they are introduced under the new-card limit instead.
func IsDue(c domain.Card, now time.Time) bool {
	return !IsNew(c) && !c.DueDate.After(now)
}

// IsDueLearning reports whether a learning or relearning card is due at now.
func IsDueLearning(c domain.Card, now time.Time) bool {
	return IsLearning(c) && !c.DueDate.After(now)
}

// IsDueReview reports whether a review card is due at now.
func IsDueReview(c domain.Card, now time.Time) bool {
	return IsReview(c) && !c.DueDate.After(now)
}
