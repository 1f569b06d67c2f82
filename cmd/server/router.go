package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-study/internal/api"
	apiMiddleware "github.com/phrazzld/scry-study/internal/api/middleware"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// setupRouter builds the application router.
func (app *application) setupRouter() http.Handler {
	return newRouter(app.studyService, app.logger)
}

// newRouter mounts the study API under /api plus a health check.
func newRouter(svc study.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(logger))
	r.Use(apiMiddleware.RequestLog)
	r.Use(middleware.Recoverer)

	studyHandler := api.NewStudyHandler(svc, logger)
	r.Route("/api", studyHandler.Routes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
