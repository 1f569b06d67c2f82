package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
)

// application holds the shared dependencies so they can be cleaned up together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore   store.CardStore
	reportStore store.SessionReportStore

	scheduler    *srs.Scheduler
	eventEmitter *events.InMemoryEventEmitter
	studyService study.Service
}

// newApplication wires stores, scheduler, events and the study service.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	params, err := cfg.SRS.Params()
	if err != nil {
		return nil, fmt.Errorf("invalid srs configuration: %w", err)
	}
	app.scheduler, err = srs.NewScheduler(params, domain.SystemClock)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	cardStore := postgres.NewPostgresCardStore(db, logger)
	reportStore := postgres.NewPostgresSessionReportStore(db, logger)
	app.cardStore = cardStore
	app.reportStore = reportStore

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(study.NewReportRecorder(reportStore, logger))

	app.studyService = study.NewService(
		cardStore,
		study.NewSQLTxRunner(db, cardStore),
		reportStore,
		app.scheduler,
		app.eventEmitter,
		study.Config{
			Limits:              cfg.Session.Limits(),
			HardCountsAsCorrect: cfg.Session.HardCountsAsCorrect,
		},
		logger,
	)

	logger.Info("application initialized",
		slog.Int("learning_steps", len(params.LearningSteps)),
		slog.Int("max_interval", params.MaxInterval))
	return app, nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
