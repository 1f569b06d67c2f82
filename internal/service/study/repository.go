package study

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
)

// CardRepository is the part of store.CardStore the study service uses.
type CardRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)
	Update(ctx context.Context, card *domain.Card) error
	CreateMultiple(ctx context.Context, cards []*domain.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportRepository is the part of store.SessionReportStore the study service uses.
type ReportRepository interface {
	Save(ctx context.Context, report *store.SessionReport) error
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*store.SessionReport, error)
	ListByDeck(ctx context.Context, deckID uuid.UUID, limit int) ([]store.SessionReport, error)
}

// Scheduler grades, previews and postpones cards. *srs.Scheduler implements it.
type Scheduler interface {
	session.Scheduler
	Preview(card domain.Card, now time.Time) (map[domain.Grade]domain.Card, error)
	Postpone(card domain.Card, days int, now time.Time) (domain.Card, error)
}

var _ Scheduler = (*srs.Scheduler)(nil)

// TxRunner runs fn in a single transaction, handing it a CardRepository bound
// to that transaction. The transaction commits when fn returns nil.
type TxRunner func(ctx context.Context, fn func(ctx context.Context, cards CardRepository) error) error

// NewSQLTxRunner returns a TxRunner backed by store.RunInTransaction.
func NewSQLTxRunner(db *sql.DB, cards store.CardStore) TxRunner {
	if db == nil || cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db and cards cannot be nil")
	}
	return func(ctx context.Context, fn func(ctx context.Context, cards CardRepository) error) error {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, cards.WithTx(tx))
		})
	}
}
