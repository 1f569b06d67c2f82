package session

import (
	"github.com/phrazzld/scry-study/internal/deck"
	"github.com/phrazzld/scry-study/internal/domain"
)

// Builder selects and orders the cards for one sitting.
type Builder struct {
	clock domain.Clock
}

// NewBuilder creates a Builder. A nil clock falls back to domain.SystemClock.
func NewBuilder(clock domain.Clock) *Builder {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &Builder{clock: clock}
}

// CreateSession returns the session for cards under limits, in tier order:
//
//  1. due Learning/Relearning cards, all of them
//  2. due Review cards, at most limits.ReviewCardsLimit
//  3. New cards, at most limits.NewCardsLimit
//
// Input order is preserved within each tier and nothing is shuffled.
// The result holds copies; an empty result means nothing is due.
// Limits are expected to be validated by the caller; out-of-range values are clamped.
func (b *Builder) CreateSession(cards []domain.Card, limits Limits) []domain.Card {
	now := b.clock()
	limits = NewLimits(limits.NewCardsLimit, limits.ReviewCardsLimit)

	var learning, review, fresh []domain.Card
	for _, c := range cards {
		switch {
		case deck.IsDueLearning(c, now):
			learning = append(learning, c)
		case deck.IsDueReview(c, now) && len(review) < limits.ReviewCardsLimit:
			review = append(review, c)
		case deck.IsNew(c) && len(fresh) < limits.NewCardsLimit:
			fresh = append(fresh, c)
		}
	}

	session := make([]domain.Card, 0, len(learning)+len(review)+len(fresh))
	for _, tier := range [][]domain.Card{learning, review, fresh} {
		for _, c := range tier {
			session = append(session, c.Clone())
		}
	}
	return session
}
