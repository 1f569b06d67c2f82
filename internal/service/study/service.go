package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/deck"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/redact"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
)

// Report listing bounds.
const (
	DefaultReportLimit = 20
	MaxReportLimit     = 100
)

// SessionInfo describes a session, live or completed.
type SessionInfo struct {
	ID        uuid.UUID     `json:"session_id"`
	DeckID    uuid.UUID     `json:"deck_id"`
	Size      int           `json:"size"`
	Index     int           `json:"index"`
	Phase     session.Phase `json:"phase"`
	StartedAt time.Time     `json:"started_at"`
}

// Reveal is the revealed card with the card each grade would produce.
type Reveal struct {
	Card    domain.Card
	Outcome map[domain.Grade]domain.Card
}

// AnswerResult is the outcome of grading the current card.
type AnswerResult struct {
	Card      domain.Card   `json:"card"`
	Phase     session.Phase `json:"phase"`
	Remaining int           `json:"remaining"`
}

// Service runs study sessions over decks stored in a CardRepository.
type Service interface {
	// ImportCards creates New cards in the deck from raw content payloads, atomically.
	ImportCards(ctx context.Context, deckID uuid.UUID, contents []json.RawMessage) ([]domain.Card, error)

	// DeckStats returns the deck's card counts at the current time.
	DeckStats(ctx context.Context, deckID uuid.UUID) (deck.Stats, error)

	// StartSession builds a session for the deck. A nil limits uses the configured defaults.
	// A deck with nothing due yields a session that is already complete.
	StartSession(ctx context.Context, deckID uuid.UUID, limits *session.Limits) (SessionInfo, error)

	// Session returns the current state of a session. Completed sessions are
	// answered from their stored report.
	Session(ctx context.Context, sessionID uuid.UUID) (SessionInfo, error)

	// CurrentCard presents the current card. Calling it again before the card
	// is answered returns the same card. Returns ErrSessionComplete at the end.
	CurrentCard(ctx context.Context, sessionID uuid.UUID) (domain.Card, error)

	// RevealAnswer reveals the presented card along with the outcome of each grade.
	RevealAnswer(ctx context.Context, sessionID uuid.UUID) (Reveal, error)

	// AnswerCard grades the revealed card and persists its new schedule.
	AnswerCard(ctx context.Context, sessionID uuid.UUID, grade domain.Grade) (AnswerResult, error)

	// Report returns the report of a completed session, live or already stored.
	Report(ctx context.Context, sessionID uuid.UUID) (session.Report, error)

	// Abandon drops a live session. Answers already given stay persisted.
	// Closing a completed session is a no-op.
	Abandon(ctx context.Context, sessionID uuid.UUID) error

	// ListReports returns the deck's stored reports, most recent first.
	// A limit outside 1..MaxReportLimit is clamped; zero means DefaultReportLimit.
	ListReports(ctx context.Context, deckID uuid.UUID, limit int) ([]store.SessionReport, error)

	// PostponeCard pushes a card's due date forward by days.
	// Returns store.ErrCardNotFound if the card is not in the deck.
	PostponeCard(ctx context.Context, deckID, cardID uuid.UUID, days int) (domain.Card, error)

	// DeleteCard removes a card from the deck.
	// Returns store.ErrCardNotFound if the card is not in the deck.
	DeleteCard(ctx context.Context, deckID, cardID uuid.UUID) error
}

// Config holds the session defaults applied by the service.
type Config struct {
	Limits              session.Limits
	HardCountsAsCorrect bool
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock sets the clock used for sessions, imports and deck stats.
func WithClock(clock domain.Clock) Option {
	return func(s *serviceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	cards     CardRepository
	inTx      TxRunner
	reports   ReportRepository
	scheduler Scheduler
	emitter   events.EventEmitter
	config    Config
	clock     domain.Clock
	sessions  *registry
	logger    *slog.Logger
}

// NewService creates the study service.
func NewService(
	cards CardRepository,
	inTx TxRunner,
	reports ReportRepository,
	scheduler Scheduler,
	emitter events.EventEmitter,
	cfg Config,
	l *slog.Logger,
	opts ...Option,
) Service {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cards cannot be nil")
	}
	if inTx == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("inTx cannot be nil")
	}
	if reports == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reports cannot be nil")
	}
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}
	if emitter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("emitter cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	s := &serviceImpl{
		cards:     cards,
		inTx:      inTx,
		reports:   reports,
		scheduler: scheduler,
		emitter:   emitter,
		config:    cfg,
		clock:     domain.SystemClock,
		sessions:  newRegistry(),
		logger:    l.With(slog.String("component", "study_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportCards implements Service.ImportCards.
func (s *serviceImpl) ImportCards(
	ctx context.Context,
	deckID uuid.UUID,
	contents []json.RawMessage,
) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(contents) == 0 {
		return nil, ErrNoCards
	}

	now := s.clock()
	cards := make([]*domain.Card, 0, len(contents))
	for i, content := range contents {
		card, err := domain.NewCard(deckID, content, now)
		if err != nil {
			log.Warn("invalid card in import",
				slog.Int("index", i),
				slog.String("deck_id", deckID.String()),
				slog.String("error", redact.Error(err)))
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, card)
	}

	err := s.inTx(ctx, func(ctx context.Context, repo CardRepository) error {
		return repo.CreateMultiple(ctx, cards)
	})
	if err != nil {
		log.Error("failed to import cards",
			slog.String("deck_id", deckID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("import_cards", "failed to store cards", err)
	}

	out := make([]domain.Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}

	log.Info("cards imported",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(out)))
	return out, nil
}

// DeckStats implements Service.DeckStats.
func (s *serviceImpl) DeckStats(ctx context.Context, deckID uuid.UUID) (deck.Stats, error) {
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load deck",
			slog.String("deck_id", deckID.String()),
			slog.String("error", redact.Error(err)))
		return deck.Stats{}, NewServiceError("deck_stats", "failed to load deck", err)
	}
	return deck.NewCalculator(s.clock).Compute(cards), nil
}

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	deckID uuid.UUID,
	limits *session.Limits,
) (SessionInfo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	l := s.config.Limits
	if limits != nil {
		if err := limits.Validate(); err != nil {
			return SessionInfo{}, err
		}
		l = *limits
	}

	pool, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck",
			slog.String("deck_id", deckID.String()),
			slog.String("error", redact.Error(err)))
		return SessionInfo{}, NewServiceError("start_session", "failed to load deck", err)
	}

	cards := session.NewBuilder(s.clock).CreateSession(pool, l)
	runner := session.NewRunner(cards, s.scheduler,
		session.WithClock(s.clock),
		session.WithHardCountsAsCorrect(s.config.HardCountsAsCorrect),
	)

	live := &liveSession{
		id:     uuid.New(),
		deckID: deckID,
		runner: runner,
	}
	s.sessions.add(live)

	log.Info("study session started",
		slog.String("session_id", live.id.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("size", runner.Len()),
		slog.Int("new_cards_limit", l.NewCardsLimit),
		slog.Int("review_cards_limit", l.ReviewCardsLimit))

	live.mu.Lock()
	defer live.mu.Unlock()
	if runner.Phase() == session.PhaseComplete {
		s.complete(ctx, live)
	}

	return live.info(), nil
}

// Session implements Service.Session.
func (s *serviceImpl) Session(ctx context.Context, sessionID uuid.UUID) (SessionInfo, error) {
	live, ok := s.sessions.get(sessionID)
	if !ok {
		stored, err := s.storedReport(ctx, sessionID)
		if err != nil {
			return SessionInfo{}, err
		}
		return SessionInfo{
			ID:        stored.SessionID,
			DeckID:    stored.DeckID,
			Size:      stored.Report.CardsStudied,
			Index:     stored.Report.CardsStudied,
			Phase:     session.PhaseComplete,
			StartedAt: stored.Report.StartedAt,
		}, nil
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return live.info(), nil
}

// CurrentCard implements Service.CurrentCard.
func (s *serviceImpl) CurrentCard(ctx context.Context, sessionID uuid.UUID) (domain.Card, error) {
	live, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return domain.Card{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	switch live.runner.Phase() {
	case session.PhaseComplete:
		return domain.Card{}, ErrSessionComplete
	case session.PhaseSelecting:
		return live.runner.PresentCard()
	default:
		card, _ := live.runner.CurrentCard()
		return card, nil
	}
}

// RevealAnswer implements Service.RevealAnswer.
func (s *serviceImpl) RevealAnswer(ctx context.Context, sessionID uuid.UUID) (Reveal, error) {
	live, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return Reveal{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	card, err := live.runner.RevealAnswer()
	if err != nil {
		return Reveal{}, err
	}
	outcome, err := s.scheduler.Preview(card, s.clock())
	if err != nil {
		return Reveal{}, NewServiceError("reveal_answer", "failed to preview grades", err)
	}
	return Reveal{Card: card, Outcome: outcome}, nil
}

// AnswerCard implements Service.AnswerCard.
//
// The runner advances before the card is written back. If the write fails the
// answer still counts for the session and the error is returned so the client
// can surface it; a version conflict means another session updated the card.
func (s *serviceImpl) AnswerCard(
	ctx context.Context,
	sessionID uuid.UUID,
	grade domain.Grade,
) (AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	live, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	updated, err := live.runner.AnswerCard(grade)
	if err != nil {
		return AnswerResult{}, err
	}

	log.Debug("card answered",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", updated.ID.String()),
		slog.String("grade", grade.String()),
		slog.String("state", updated.State.String()),
		slog.Int("interval", updated.Interval))

	result := AnswerResult{
		Card:      updated,
		Phase:     live.runner.Phase(),
		Remaining: live.runner.Len() - live.runner.Index(),
	}

	if err := s.cards.Update(ctx, &updated); err != nil {
		log.Error("failed to persist answered card",
			slog.String("session_id", sessionID.String()),
			slog.String("card_id", updated.ID.String()),
			slog.String("error", redact.Error(err)))
		if live.runner.Phase() == session.PhaseComplete {
			s.complete(ctx, live)
		}
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrNotFound) {
			return result, err
		}
		return result, NewServiceError("answer_card", "failed to persist card", err)
	}
	result.Card = updated

	if live.runner.Phase() == session.PhaseComplete {
		s.complete(ctx, live)
	}

	return result, nil
}

// Report implements Service.Report.
func (s *serviceImpl) Report(ctx context.Context, sessionID uuid.UUID) (session.Report, error) {
	if live, ok := s.sessions.get(sessionID); ok {
		live.mu.Lock()
		defer live.mu.Unlock()
		return live.runner.GenerateReport()
	}

	stored, err := s.storedReport(ctx, sessionID)
	if err != nil {
		return session.Report{}, err
	}
	return stored.Report, nil
}

// Abandon implements Service.Abandon.
func (s *serviceImpl) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	if !s.sessions.remove(sessionID) {
		_, err := s.storedReport(ctx, sessionID)
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("study session closed",
		slog.String("session_id", sessionID.String()))
	return nil
}

// ListReports implements Service.ListReports.
func (s *serviceImpl) ListReports(ctx context.Context, deckID uuid.UUID, limit int) ([]store.SessionReport, error) {
	switch {
	case limit <= 0:
		limit = DefaultReportLimit
	case limit > MaxReportLimit:
		limit = MaxReportLimit
	}

	reports, err := s.reports.ListByDeck(ctx, deckID, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list reports",
			slog.String("deck_id", deckID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("list_reports", "failed to load reports", err)
	}
	return reports, nil
}

// PostponeCard implements Service.PostponeCard.
func (s *serviceImpl) PostponeCard(ctx context.Context, deckID, cardID uuid.UUID, days int) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.deckCard(ctx, deckID, cardID)
	if err != nil {
		return domain.Card{}, err
	}

	next, err := s.scheduler.Postpone(*card, days, s.clock())
	if err != nil {
		return domain.Card{}, err
	}
	if err := s.cards.Update(ctx, &next); err != nil {
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrNotFound) {
			return domain.Card{}, err
		}
		log.Error("failed to persist postponed card",
			slog.String("card_id", cardID.String()),
			slog.String("error", redact.Error(err)))
		return domain.Card{}, NewServiceError("postpone_card", "failed to persist card", err)
	}

	log.Info("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due_date", next.DueDate))
	return next, nil
}

// DeleteCard implements Service.DeleteCard.
func (s *serviceImpl) DeleteCard(ctx context.Context, deckID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.deckCard(ctx, deckID, cardID); err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		log.Error("failed to delete card",
			slog.String("card_id", cardID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted",
		slog.String("deck_id", deckID.String()),
		slog.String("card_id", cardID.String()))
	return nil
}

// deckCard loads a card and checks it belongs to the deck.
func (s *serviceImpl) deckCard(ctx context.Context, deckID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_card", "failed to load card", err)
	}
	if card.DeckID != deckID {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

// liveSession returns the session still in the registry. A session that
// already completed yields ErrSessionComplete.
func (s *serviceImpl) liveSession(ctx context.Context, sessionID uuid.UUID) (*liveSession, error) {
	if live, ok := s.sessions.get(sessionID); ok {
		return live, nil
	}
	if _, err := s.storedReport(ctx, sessionID); err != nil {
		return nil, err
	}
	return nil, ErrSessionComplete
}

func (s *serviceImpl) storedReport(ctx context.Context, sessionID uuid.UUID) (*store.SessionReport, error) {
	stored, err := s.reports.GetBySessionID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewServiceError("report", "failed to load report", err)
	}
	return stored, nil
}

// complete emits the completion event once per session and drops the session
// from the registry once its report is stored. On a handler failure the
// session stays live so the report can still be generated from it.
// Callers hold live.mu.
func (s *serviceImpl) complete(ctx context.Context, live *liveSession) {
	if live.recorded {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	report, err := live.runner.GenerateReport()
	if err != nil {
		log.Error("failed to generate report",
			slog.String("session_id", live.id.String()),
			slog.String("error", redact.Error(err)))
		return
	}
	live.recorded = true

	log.Info("study session completed",
		slog.String("session_id", live.id.String()),
		slog.Int("cards_studied", report.CardsStudied),
		slog.Float64("accuracy", report.Accuracy))

	event := events.NewSessionCompletedEvent(live.id, live.deckID, report, s.clock())
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit session completed event",
			slog.String("session_id", live.id.String()),
			slog.String("error", redact.Error(err)))
		return
	}
	s.sessions.remove(live.id)
}

func (l *liveSession) info() SessionInfo {
	return SessionInfo{
		ID:        l.id,
		DeckID:    l.deckID,
		Size:      l.runner.Len(),
		Index:     l.runner.Index(),
		Phase:     l.runner.Phase(),
		StartedAt: l.runner.StartedAt(),
	}
}
