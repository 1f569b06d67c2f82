package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/session"
)

// StudyHandler serves decks and study sessions.
type StudyHandler struct {
	service study.Service
	logger  *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(service study.Service, l *slog.Logger) *StudyHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for StudyHandler")
	}
	if l == nil {
		l = slog.Default()
	}
	return &StudyHandler{
		service: service,
		logger:  l.With(slog.String("component", "study_handler")),
	}
}

// Routes mounts the handler's endpoints on r.
func (h *StudyHandler) Routes(r chi.Router) {
	r.Route("/decks/{deckID}", func(r chi.Router) {
		r.Get("/stats", h.DeckStats)
		r.Post("/cards", h.ImportCards)
		r.Delete("/cards/{cardID}", h.DeleteCard)
		r.Post("/cards/{cardID}/postpone", h.PostponeCard)
		r.Post("/sessions", h.StartSession)
		r.Get("/reports", h.ListReports)
	})
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.AbandonSession)
		r.Get("/card", h.CurrentCard)
		r.Post("/reveal", h.RevealAnswer)
		r.Post("/answer", h.AnswerCard)
		r.Get("/report", h.Report)
	})
}

// DeckStats handles GET /decks/{deckID}/stats.
func (h *StudyHandler) DeckStats(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}

	stats, err := h.service.DeckStats(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ImportCards handles POST /decks/{deckID}/cards.
func (h *StudyHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}

	var req ImportCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.service.ImportCards(r.Context(), deckID, req.Cards)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	resp := ImportCardsResponse{DeckID: deckID, Cards: make([]CardResponse, len(cards))}
	for i, c := range cards {
		resp.Cards[i] = cardToResponse(c)
	}
	log.Debug("cards imported", slog.String("deck_id", deckID.String()), slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// PostponeCard handles POST /decks/{deckID}/cards/{cardID}/postpone.
func (h *StudyHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(w, r, "cardID")
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.service.PostponeCard(r.Context(), deckID, cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /decks/{deckID}/cards/{cardID}.
func (h *StudyHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(w, r, "cardID")
	if !ok {
		return
	}

	if err := h.service.DeleteCard(r.Context(), deckID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReports handles GET /decks/{deckID}/reports?limit=n.
func (h *StudyHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", study.DefaultReportLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reports, err := h.service.ListReports(r.Context(), deckID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load reports")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reportsToResponse(deckID, reports))
}

// StartSession handles POST /decks/{deckID}/sessions. The body is optional;
// without one the configured limits apply.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathUUID(w, r, "deckID")
	if !ok {
		return
	}

	var limits *session.Limits
	var req StartSessionRequest
	switch err := shared.DecodeJSON(r, &req); {
	case errors.Is(err, shared.ErrEmptyBody):
	case err != nil:
		h.badBody(w, r, err)
		return
	default:
		if err := shared.ValidateRequest(req); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		l := req.Limits()
		limits = &l
	}

	info, err := h.service.StartSession(r.Context(), deckID, limits)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, info)
}

// GetSession handles GET /sessions/{sessionID}.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	info, err := h.service.Session(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, info)
}

// CurrentCard handles GET /sessions/{sessionID}/card. Only the front is
// shown; 204 once the session is complete.
func (h *StudyHandler) CurrentCard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	card, err := h.service.CurrentCard(r.Context(), sessionID)
	if errors.Is(err, study.ErrSessionComplete) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToFront(card))
}

// RevealAnswer handles POST /sessions/{sessionID}/reveal.
func (h *StudyHandler) RevealAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	rev, err := h.service.RevealAnswer(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, revealToResponse(rev))
}

// AnswerCard handles POST /sessions/{sessionID}/answer.
func (h *StudyHandler) AnswerCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	grade, err := domain.ParseGrade(req.Grade)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.service.AnswerCard(r.Context(), sessionID, grade)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("answer accepted",
		slog.String("session_id", sessionID.String()),
		slog.String("grade", grade.String()),
		slog.Int("remaining", result.Remaining))
	shared.RespondWithJSON(w, r, http.StatusOK, answerToResponse(result))
}

// Report handles GET /sessions/{sessionID}/report.
func (h *StudyHandler) Report(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	report, err := h.service.Report(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load report")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// AbandonSession handles DELETE /sessions/{sessionID}.
func (h *StudyHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	if err := h.service.Abandon(r.Context(), sessionID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudyHandler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
}
