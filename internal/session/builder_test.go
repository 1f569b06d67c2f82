package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionTierOrder(t *testing.T) {
	t.Parallel()

	n1, n2, n3, n4, n5 := newCard(), newCard(), newCard(), newCard(), newCard()
	r1, r2, r3 := dueReview(time.Hour), dueReview(48*time.Hour), dueReview(time.Minute)
	l1 := dueLearning()

	pool := []domain.Card{n1, r1, n2, n3, r2, n4, l1, n5, r3}
	b := NewBuilder(domain.FixedClock(t0))

	got := b.CreateSession(pool, Limits{NewCardsLimit: 2, ReviewCardsLimit: 10})

	require.Len(t, got, 6)
	assert.Equal(t, []uuid.UUID{l1.ID, r1.ID, r2.ID, r3.ID, n1.ID, n2.ID}, ids(got))
}

func TestCreateSessionCapsReviewsButNotLearning(t *testing.T) {
	t.Parallel()

	l1, l2 := dueLearning(), dueLearning()
	r1, r2, r3 := dueReview(time.Hour), dueReview(time.Hour), dueReview(time.Hour)
	pool := []domain.Card{r1, l1, r2, r3, l2}

	got := NewBuilder(domain.FixedClock(t0)).CreateSession(pool, Limits{NewCardsLimit: 5, ReviewCardsLimit: 1})

	assert.Equal(t, []uuid.UUID{l1.ID, l2.ID, r1.ID}, ids(got))
}

func TestCreateSessionSkipsCardsNotDue(t *testing.T) {
	t.Parallel()

	future := dueReview(-24 * time.Hour)
	learningLater := dueLearning()
	learningLater.DueDate = t0.Add(5 * time.Minute)
	dueNow := dueReview(0)

	got := NewBuilder(domain.FixedClock(t0)).CreateSession(
		[]domain.Card{future, learningLater, dueNow},
		DefaultLimits(),
	)

	assert.Equal(t, []uuid.UUID{dueNow.ID}, ids(got))
}

func TestCreateSessionEmpty(t *testing.T) {
	t.Parallel()

	b := NewBuilder(domain.FixedClock(t0))

	got := b.CreateSession(nil, DefaultLimits())
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = b.CreateSession([]domain.Card{newCard(), dueReview(time.Hour)}, Limits{})
	assert.Empty(t, got)
}

func TestCreateSessionClampsOutOfRangeLimits(t *testing.T) {
	t.Parallel()

	pool := []domain.Card{newCard(), newCard(), dueReview(time.Hour)}

	got := NewBuilder(domain.FixedClock(t0)).CreateSession(pool, Limits{NewCardsLimit: -4, ReviewCardsLimit: 1 << 20})

	require.Len(t, got, 1)
	assert.Equal(t, domain.StateReview, got[0].State)
}

func TestCreateSessionReturnsCopies(t *testing.T) {
	t.Parallel()

	c := newCard()
	c.Content = []byte(`{"front":"a","back":"b"}`)
	pool := []domain.Card{c}

	got := NewBuilder(domain.FixedClock(t0)).CreateSession(pool, DefaultLimits())
	require.Len(t, got, 1)

	got[0].Content[2] = 'X'
	got[0].EaseFactor = 9
	assert.Equal(t, byte('f'), pool[0].Content[2])
	assert.Equal(t, domain.DefaultEaseFactor, pool[0].EaseFactor)
}
