// Package main runs the scry-study HTTP server: decks of cards studied in
// spaced-repetition sessions, with schedules and reports stored in Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/redact"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending database migrations before serving")
	migrateOnly := flag.Bool("migrate-only", false, "apply pending database migrations and exit")
	flag.Parse()

	if err := run(*migrate || *migrateOnly, *migrateOnly); err != nil {
		slog.Error("server exited with error", slog.String("error", redact.Error(err)))
		os.Exit(1)
	}
}

func run(migrate, migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("new_cards_limit", cfg.Session.NewCardsLimit),
		slog.Int("review_cards_limit", cfg.Session.ReviewCardsLimit))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	l.Info("database connection established")

	if migrate {
		if err := postgres.Migrate(ctx, db, l); err != nil {
			_ = db.Close()
			return err
		}
		version, err := postgres.MigrationVersion(ctx, db, l)
		if err != nil {
			_ = db.Close()
			return err
		}
		l.Info("database migrations applied", slog.Int64("version", version))
		if migrateOnly {
			return db.Close()
		}
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
