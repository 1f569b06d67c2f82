package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/redact"
	"github.com/phrazzld/scry-study/internal/store"
)

const cardColumns = `id, deck_id, state, ease_factor, interval_days, step, due_date,
	lapses, reviews, last_reviewed_at, content, version, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    domain.Clock
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
		now:    domain.SystemClock,
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger, now: s.now}
}

// CreateMultiple implements store.CardStore.CreateMultiple.
// Every card is validated before the first insert.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", redact.Error(err)),
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, card := range cards {
		if card.Version == 0 {
			card.Version = 1
		}
		_, err := s.db.ExecContext(ctx, query,
			card.ID,
			card.DeckID,
			int(card.State),
			card.EaseFactor,
			card.Interval,
			card.Step,
			card.DueDate,
			card.Lapses,
			card.Reviews,
			nullTime(card.LastReviewedAt),
			string(card.Content),
			card.Version,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create card",
				slog.String("error", redact.Error(err)),
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return store.NewStoreError("card", "create", "insert failed", MapError(err))
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return nil, store.NewStoreError("card", "get", "query failed", MapError(err))
	}

	return &card, nil
}

// ListByDeck implements store.CardStore.ListByDeck.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE deck_id = $1 ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", redact.Error(err)),
			slog.String("deck_id", deckID.String()))
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "list", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "row iteration failed", err)
	}

	log.Debug("cards listed",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// Update implements store.CardStore.Update with optimistic versioning.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	updatedAt := s.now()

	query := `
		UPDATE cards
		SET state = $1, ease_factor = $2, interval_days = $3, step = $4, due_date = $5,
			lapses = $6, reviews = $7, last_reviewed_at = $8, content = $9,
			version = version + 1, updated_at = $10
		WHERE id = $11 AND version = $12
	`

	result, err := s.db.ExecContext(ctx, query,
		int(card.State),
		card.EaseFactor,
		card.Interval,
		card.Step,
		card.DueDate,
		card.Lapses,
		card.Reviews,
		nullTime(card.LastReviewedAt),
		string(card.Content),
		updatedAt,
		card.ID,
		card.Version,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("card", "update", "update failed", MapError(err))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return store.NewStoreError("card", "update", "update failed", err)
	}
	if n == 0 {
		return s.missingOrConflict(ctx, card)
	}

	card.Version++
	card.UpdatedAt = updatedAt

	log.Debug("card updated",
		slog.String("card_id", card.ID.String()),
		slog.Int("version", card.Version))
	return nil
}

// missingOrConflict tells apart the two reasons a versioned UPDATE touches no rows.
func (s *PostgresCardStore) missingOrConflict(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, card.ID).Scan(&exists)
	if err != nil {
		return store.NewStoreError("card", "update", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrCardNotFound
	}

	log.Warn("card version conflict",
		slog.String("card_id", card.ID.String()),
		slog.Int("expected_version", card.Version))
	return fmt.Errorf("%w: card %s at version %d", store.ErrVersionConflict, card.ID, card.Version)
}

// Delete implements store.CardStore.Delete.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return store.NewStoreError("card", "delete", "delete failed", MapError(err))
	}

	n, err := rowsAffected(result)
	if err != nil {
		return store.NewStoreError("card", "delete", "delete failed", err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		card         domain.Card
		state        int
		lastReviewed sql.NullTime
		content      []byte
	)

	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&state,
		&card.EaseFactor,
		&card.Interval,
		&card.Step,
		&card.DueDate,
		&card.Lapses,
		&card.Reviews,
		&lastReviewed,
		&content,
		&card.Version,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}

	card.State = domain.CardState(state)
	if lastReviewed.Valid {
		card.LastReviewedAt = lastReviewed.Time.UTC()
	}
	card.DueDate = card.DueDate.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()
	card.Content = content

	return card, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
