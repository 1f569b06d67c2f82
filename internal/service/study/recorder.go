package study

import (
	"context"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// ReportRecorder persists the report carried by every SessionCompletedEvent.
type ReportRecorder struct {
	reports ReportRepository
	logger  *slog.Logger
}

var _ events.EventHandler = (*ReportRecorder)(nil)

// NewReportRecorder creates a ReportRecorder writing to reports.
func NewReportRecorder(reports ReportRepository, l *slog.Logger) *ReportRecorder {
	if reports == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reports cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &ReportRecorder{
		reports: reports,
		logger:  l.With(slog.String("component", "report_recorder")),
	}
}

// HandleEvent implements events.EventHandler. A report that was already
// stored for the session is not an error.
func (r *ReportRecorder) HandleEvent(ctx context.Context, event *events.SessionCompletedEvent) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	err := r.reports.Save(ctx, &store.SessionReport{
		SessionID: event.SessionID,
		DeckID:    event.DeckID,
		Report:    event.Report,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("session report already stored",
				slog.String("session_id", event.SessionID.String()))
			return nil
		}
		return NewServiceError("record_report", "failed to save report", err)
	}

	log.Debug("session report stored",
		slog.String("session_id", event.SessionID.String()),
		slog.String("deck_id", event.DeckID.String()))
	return nil
}
