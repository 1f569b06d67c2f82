package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/session"
)

// SessionCompletedEvent is published when the last card of a study session
// has been answered. It carries the final report so handlers never need to
// reach back into the session.
type SessionCompletedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	SessionID uuid.UUID      `json:"session_id"`
	DeckID    uuid.UUID      `json:"deck_id"`
	Report    session.Report `json:"report"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionCompletedEvent creates a SessionCompletedEvent stamped with now.
func NewSessionCompletedEvent(
	sessionID, deckID uuid.UUID,
	report session.Report,
	now time.Time,
) *SessionCompletedEvent {
	return &SessionCompletedEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		DeckID:    deckID,
		Report:    report,
		CreatedAt: now,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *SessionCompletedEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *SessionCompletedEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *SessionCompletedEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *SessionCompletedEvent) error
}
