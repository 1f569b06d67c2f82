package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/redact"
	"github.com/phrazzld/scry-study/internal/store"
)

// PostgresSessionReportStore implements store.SessionReportStore.
// Reports are stored as JSONB so their shape can grow without migrations.
type PostgresSessionReportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionReportStore creates a report store on db.
// If logger is nil, a default logger will be used.
func NewPostgresSessionReportStore(db store.DBTX, logger *slog.Logger) *PostgresSessionReportStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionReportStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_report_store")),
	}
}

var _ store.SessionReportStore = (*PostgresSessionReportStore)(nil)

// WithTx implements store.SessionReportStore.WithTx.
func (s *PostgresSessionReportStore) WithTx(tx *sql.Tx) store.SessionReportStore {
	return &PostgresSessionReportStore{db: tx, logger: s.logger}
}

// Save implements store.SessionReportStore.Save.
func (s *PostgresSessionReportStore) Save(ctx context.Context, report *store.SessionReport) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := json.Marshal(report.Report)
	if err != nil {
		return fmt.Errorf("%w: failed to encode report: %w", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_reports (session_id, deck_id, report, created_at)
		VALUES ($1, $2, $3, $4)
	`, report.SessionID, report.DeckID, string(payload), report.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: report for session %s", store.ErrDuplicate, report.SessionID)
		}
		log.Error("failed to save session report",
			slog.String("error", redact.Error(err)),
			slog.String("session_id", report.SessionID.String()))
		return store.NewStoreError("session_report", "create", "insert failed", MapError(err))
	}

	log.Debug("session report saved",
		slog.String("session_id", report.SessionID.String()),
		slog.String("deck_id", report.DeckID.String()))
	return nil
}

// GetBySessionID implements store.SessionReportStore.GetBySessionID.
func (s *PostgresSessionReportStore) GetBySessionID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*store.SessionReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, deck_id, report, created_at
		FROM session_reports
		WHERE session_id = $1
	`, sessionID)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionReportNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get session report",
			slog.String("error", redact.Error(err)),
			slog.String("session_id", sessionID.String()))
		return nil, store.NewStoreError("session_report", "get", "query failed", MapError(err))
	}
	return &report, nil
}

// ListByDeck implements store.SessionReportStore.ListByDeck.
func (s *PostgresSessionReportStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	limit int,
) ([]store.SessionReport, error) {
	if limit <= 0 {
		return []store.SessionReport{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, deck_id, report, created_at
		FROM session_reports
		WHERE deck_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, deckID, limit)
	if err != nil {
		return nil, store.NewStoreError("session_report", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	reports := make([]store.SessionReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, store.NewStoreError("session_report", "list", "scan failed", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("session_report", "list", "row iteration failed", err)
	}
	return reports, nil
}

func scanReport(row rowScanner) (store.SessionReport, error) {
	var (
		report  store.SessionReport
		payload []byte
	)
	if err := row.Scan(&report.SessionID, &report.DeckID, &payload, &report.CreatedAt); err != nil {
		return store.SessionReport{}, err
	}
	if err := json.Unmarshal(payload, &report.Report); err != nil {
		return store.SessionReport{}, fmt.Errorf("failed to decode report: %w", err)
	}
	report.CreatedAt = report.CreatedAt.UTC()
	return report, nil
}
