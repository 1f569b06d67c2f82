package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/session"
)

// SessionReport is a persisted summary of a completed study session.
type SessionReport struct {
	SessionID uuid.UUID      `json:"session_id"`
	DeckID    uuid.UUID      `json:"deck_id"`
	Report    session.Report `json:"report"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionReportStore persists reports of completed sessions.
type SessionReportStore interface {
	// Save stores the report. Returns ErrDuplicate if one already exists for the session.
	Save(ctx context.Context, report *SessionReport) error

	// GetBySessionID returns the report for a session.
	// Returns ErrSessionReportNotFound if none was saved.
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*SessionReport, error)

	// ListByDeck returns the deck's reports, most recent first, at most limit entries.
	ListByDeck(ctx context.Context, deckID uuid.UUID, limit int) ([]SessionReport, error)

	// WithTx returns a SessionReportStore that runs its statements on tx.
	WithTx(tx *sql.Tx) SessionReportStore
}
