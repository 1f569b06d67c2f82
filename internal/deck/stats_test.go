package deck

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC)

func card(state domain.CardState, due time.Time) domain.Card {
	return domain.Card{
		ID:         uuid.New(),
		State:      state,
		EaseFactor: domain.DefaultEaseFactor,
		DueDate:    due,
	}
}

func samplePool() []domain.Card {
	past := now.Add(-time.Hour)
	future := now.Add(48 * time.Hour)
	return []domain.Card{
		card(domain.StateNew, past),
		card(domain.StateNew, future),
		card(domain.StateLearning, past),
		card(domain.StateRelearning, future),
		card(domain.StateReview, past),
		card(domain.StateReview, now),
		card(domain.StateReview, future),
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	stats := ComputeStats(samplePool(), now)

	assert.Equal(t, Stats{
		Total:    7,
		New:      2,
		Learning: 2,
		Due:      3, // learning(past), review(past), review(now)
		Review:   3,
	}, stats)
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Stats{}, ComputeStats(nil, now))
}

func TestComputeStatsIsIdempotent(t *testing.T) {
	t.Parallel()
	pool := samplePool()
	snapshot := make([]domain.Card, len(pool))
	copy(snapshot, pool)

	first := ComputeStats(pool, now)
	second := ComputeStats(pool, now)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, pool, "computing stats must not mutate the pool")
}

func TestCalculatorUsesClock(t *testing.T) {
	t.Parallel()
	pool := samplePool()

	early := NewCalculator(domain.FixedClock(now.Add(-2 * time.Hour))).Compute(pool)
	late := NewCalculator(domain.FixedClock(now.Add(72 * time.Hour))).Compute(pool)

	assert.Equal(t, 0, early.Due)
	assert.Equal(t, 5, late.Due)
}

func TestClassification(t *testing.T) {
	t.Parallel()
	past := now.Add(-time.Minute)

	assert.False(t, IsDue(card(domain.StateNew, past), now), "new cards are never due")
	assert.True(t, IsDue(card(domain.StateRelearning, past), now))
	assert.True(t, IsDueLearning(card(domain.StateLearning, now), now), "due boundary is inclusive")
	assert.False(t, IsDueLearning(card(domain.StateReview, past), now))
	assert.True(t, IsDueReview(card(domain.StateReview, past), now))
	assert.False(t, IsDueReview(card(domain.StateReview, now.Add(time.Second)), now))
}
