package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultEaseFactor is the ease factor every new card starts with.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the lowest ease factor a card may hold.
const MinEaseFactor = 1.3

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardContentEmpty is returned when a card's content is empty.
	ErrCardContentEmpty = errors.New("card content cannot be empty")

	// ErrCardContentInvalid is returned when a card's content is not valid JSON.
	ErrCardContentInvalid = errors.New("card content must be valid JSON")

	// ErrInvalidInterval is returned when a card's interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidEaseFactor is returned when a card's ease factor is below the floor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidStep is returned when a card's learning step is negative.
	ErrInvalidStep = errors.New("learning step must be greater than or equal to 0")
)

// Card is the unit of knowledge being scheduled.
//
// Scheduling fields (State, EaseFactor, Interval, Step, DueDate, Lapses, Reviews)
// are only changed by the srs scheduler. Content is an opaque JSON payload holding
// the front/back text and tags; the scheduling core never looks inside it.
type Card struct {
	ID             uuid.UUID       `json:"id"`
	DeckID         uuid.UUID       `json:"deck_id"`
	State          CardState       `json:"state"`
	EaseFactor     float64         `json:"ease_factor"`
	Interval       int             `json:"interval"` // days until next review, 0 while in learning steps
	Step           int             `json:"step"`     // index into the active learning-step table
	DueDate        time.Time       `json:"due_date"`
	Lapses         int             `json:"lapses"`
	Reviews        int             `json:"reviews"`
	LastReviewedAt time.Time       `json:"last_reviewed_at"`
	Content        json.RawMessage `json:"content"`
	Version        int             `json:"version"` // optimistic concurrency token, owned by the store
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CardContent represents the usual structure of the content field in a Card.
// Cards may carry any JSON object; this is the shape the API renders.
type CardContent struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// NewCard creates a New card in the given deck. The card is due immediately.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, content json.RawMessage, now time.Time) (*Card, error) {
	card := &Card{
		ID:         uuid.New(),
		DeckID:     deckID,
		State:      StateNew,
		EaseFactor: DefaultEaseFactor,
		DueDate:    now,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if !c.State.IsValid() {
		return ErrInvalidState
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.Step < 0 {
		return ErrInvalidStep
	}

	if len(c.Content) == 0 {
		return ErrCardContentEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(c.Content, &js); err != nil {
		return ErrCardContentInvalid
	}

	return nil
}

// Clone returns a deep copy of the card. The content payload is copied so the
// clone never aliases the original's backing array.
func (c Card) Clone() Card {
	if c.Content != nil {
		content := make(json.RawMessage, len(c.Content))
		copy(content, c.Content)
		c.Content = content
	}
	return c
}

// ParsedContent decodes the card's content into the common CardContent shape.
func (c *Card) ParsedContent() (CardContent, error) {
	var content CardContent
	if err := json.Unmarshal(c.Content, &content); err != nil {
		return CardContent{}, ErrCardContentInvalid
	}
	return content, nil
}
