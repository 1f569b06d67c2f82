package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store.
	// It should run inside RunInTransaction so a failure leaves no partial deck behind.
	// All cards must pass domain validation.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck returns every card in the deck ordered by creation time.
	// The order is stable so session building stays deterministic.
	// An unknown deck yields an empty slice.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)

	// Update writes the card's scheduling fields if the stored version still
	// equals card.Version. On success card.Version is incremented and
	// card.UpdatedAt refreshed.
	// Returns ErrCardNotFound if the card does not exist and ErrVersionConflict
	// if it was changed concurrently.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CardStore that runs its statements on tx.
	WithTx(tx *sql.Tx) CardStore
}
