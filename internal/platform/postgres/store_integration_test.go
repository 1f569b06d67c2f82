//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 10 * time.Second

// openTestDB connects to DATABASE_URL and applies migrations, skipping the
// test when no database is configured.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	db, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, slog.Default()))
	return db
}

// withTx runs fn inside a transaction that is always rolled back.
func withTx(t *testing.T, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	fn(ctx, tx)
}

func testCard(t *testing.T, deckID uuid.UUID, created time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, json.RawMessage(`{"front":"Q","back":"A"}`), created)
	require.NoError(t, err)
	return card
}

func TestCardStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)

	withTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		cards := NewPostgresCardStore(db, nil).WithTx(tx)
		deckID := uuid.New()
		base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

		first := testCard(t, deckID, base)
		second := testCard(t, deckID, base.Add(time.Minute))
		other := testCard(t, uuid.New(), base)
		require.NoError(t, cards.CreateMultiple(ctx, []*domain.Card{second, first, other}))

		got, err := cards.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, domain.StateNew, got.State)
		assert.Equal(t, 1, got.Version)
		assert.True(t, got.LastReviewedAt.IsZero())
		assert.JSONEq(t, string(first.Content), string(got.Content))

		listed, err := cards.ListByDeck(ctx, deckID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, first.ID, listed[0].ID, "ordered by creation time")
		assert.Equal(t, second.ID, listed[1].ID)

		empty, err := cards.ListByDeck(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestCardStoreOptimisticUpdate(t *testing.T) {
	db := openTestDB(t)

	withTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		cards := NewPostgresCardStore(db, nil).WithTx(tx)
		card := testCard(t, uuid.New(), time.Now().UTC())
		require.NoError(t, cards.CreateMultiple(ctx, []*domain.Card{card}))

		stale := *card

		card.State = domain.StateLearning
		card.Reviews = 1
		card.LastReviewedAt = time.Now().UTC()
		require.NoError(t, cards.Update(ctx, card))
		assert.Equal(t, 2, card.Version)

		stale.Reviews = 5
		err := cards.Update(ctx, &stale)
		assert.ErrorIs(t, err, store.ErrVersionConflict)

		got, err := cards.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateLearning, got.State)
		assert.Equal(t, 1, got.Reviews)
		assert.False(t, got.LastReviewedAt.IsZero())

		missing := testCard(t, uuid.New(), time.Now().UTC())
		assert.ErrorIs(t, cards.Update(ctx, missing), store.ErrCardNotFound)
	})
}

func TestCardStoreDelete(t *testing.T) {
	db := openTestDB(t)

	withTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		cards := NewPostgresCardStore(db, nil).WithTx(tx)
		card := testCard(t, uuid.New(), time.Now().UTC())
		require.NoError(t, cards.CreateMultiple(ctx, []*domain.Card{card}))

		require.NoError(t, cards.Delete(ctx, card.ID))
		assert.ErrorIs(t, cards.Delete(ctx, card.ID), store.ErrCardNotFound)

		_, err := cards.GetByID(ctx, card.ID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardStoreRejectsInvalidCard(t *testing.T) {
	db := openTestDB(t)

	withTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		cards := NewPostgresCardStore(db, nil).WithTx(tx)
		card := testCard(t, uuid.New(), time.Now().UTC())
		card.EaseFactor = 1.0

		err := cards.CreateMultiple(ctx, []*domain.Card{card})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidEaseFactor)
	})
}

func TestSessionReportStore(t *testing.T) {
	db := openTestDB(t)

	withTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		reports := NewPostgresSessionReportStore(db, nil).WithTx(tx)
		deckID := uuid.New()
		now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

		saved := &store.SessionReport{
			SessionID: uuid.New(),
			DeckID:    deckID,
			Report: session.Report{
				CardsStudied:    2,
				TotalAnswers:    2,
				CorrectAnswers:  1,
				Accuracy:        50,
				AnswerBreakdown: map[domain.Grade]int{domain.GradeGood: 1, domain.GradeAgain: 1},
				StartedAt:       now.Add(-3 * time.Minute),
				EndedAt:         now,
				StudyTime:       3 * time.Minute,
			},
			CreatedAt: now,
		}
		require.NoError(t, reports.Save(ctx, saved))
		assert.ErrorIs(t, reports.Save(ctx, saved), store.ErrDuplicate)

		got, err := reports.GetBySessionID(ctx, saved.SessionID)
		require.NoError(t, err)
		assert.Equal(t, saved.Report.AnswerBreakdown, got.Report.AnswerBreakdown)
		assert.Equal(t, 3*time.Minute, got.Report.StudyTime)
		assert.True(t, now.Equal(got.CreatedAt))

		later := *saved
		later.SessionID = uuid.New()
		later.CreatedAt = now.Add(time.Hour)
		require.NoError(t, reports.Save(ctx, &later))

		listed, err := reports.ListByDeck(ctx, deckID, 10)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, later.SessionID, listed[0].SessionID, "most recent first")

		_, err = reports.GetBySessionID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrSessionReportNotFound)
	})
}

func TestRunInTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cards := NewPostgresCardStore(db, nil)
	card := testCard(t, uuid.New(), time.Now().UTC())

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := cards.WithTx(tx).CreateMultiple(ctx, []*domain.Card{card}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = cards.GetByID(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestMigrationVersion(t *testing.T) {
	db := openTestDB(t)
	version, err := MigrationVersion(context.Background(), db, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(2))
}
