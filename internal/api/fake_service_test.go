package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/deck"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
)

// fakeService records calls and returns canned values. Unset funcs return zero values.
type fakeService struct {
	importFn   func(deckID uuid.UUID, contents []json.RawMessage) ([]domain.Card, error)
	statsFn    func(deckID uuid.UUID) (deck.Stats, error)
	startFn    func(deckID uuid.UUID, limits *session.Limits) (study.SessionInfo, error)
	sessionFn  func(id uuid.UUID) (study.SessionInfo, error)
	currentFn  func(id uuid.UUID) (domain.Card, error)
	revealFn   func(id uuid.UUID) (study.Reveal, error)
	answerFn   func(id uuid.UUID, grade domain.Grade) (study.AnswerResult, error)
	reportFn   func(id uuid.UUID) (session.Report, error)
	abandonFn  func(id uuid.UUID) error
	reportsFn  func(deckID uuid.UUID, limit int) ([]store.SessionReport, error)
	postponeFn func(deckID, cardID uuid.UUID, days int) (domain.Card, error)
	deleteFn   func(deckID, cardID uuid.UUID) error
}

var _ study.Service = (*fakeService)(nil)

func (f *fakeService) ImportCards(_ context.Context, deckID uuid.UUID, contents []json.RawMessage) ([]domain.Card, error) {
	if f.importFn == nil {
		return nil, nil
	}
	return f.importFn(deckID, contents)
}

func (f *fakeService) DeckStats(_ context.Context, deckID uuid.UUID) (deck.Stats, error) {
	if f.statsFn == nil {
		return deck.Stats{}, nil
	}
	return f.statsFn(deckID)
}

func (f *fakeService) StartSession(_ context.Context, deckID uuid.UUID, limits *session.Limits) (study.SessionInfo, error) {
	if f.startFn == nil {
		return study.SessionInfo{}, nil
	}
	return f.startFn(deckID, limits)
}

func (f *fakeService) Session(_ context.Context, id uuid.UUID) (study.SessionInfo, error) {
	if f.sessionFn == nil {
		return study.SessionInfo{}, nil
	}
	return f.sessionFn(id)
}

func (f *fakeService) CurrentCard(_ context.Context, id uuid.UUID) (domain.Card, error) {
	if f.currentFn == nil {
		return domain.Card{}, nil
	}
	return f.currentFn(id)
}

func (f *fakeService) RevealAnswer(_ context.Context, id uuid.UUID) (study.Reveal, error) {
	if f.revealFn == nil {
		return study.Reveal{}, nil
	}
	return f.revealFn(id)
}

func (f *fakeService) AnswerCard(_ context.Context, id uuid.UUID, grade domain.Grade) (study.AnswerResult, error) {
	if f.answerFn == nil {
		return study.AnswerResult{}, nil
	}
	return f.answerFn(id, grade)
}

func (f *fakeService) Report(_ context.Context, id uuid.UUID) (session.Report, error) {
	if f.reportFn == nil {
		return session.Report{}, nil
	}
	return f.reportFn(id)
}

func (f *fakeService) Abandon(_ context.Context, id uuid.UUID) error {
	if f.abandonFn == nil {
		return nil
	}
	return f.abandonFn(id)
}

func (f *fakeService) ListReports(_ context.Context, deckID uuid.UUID, limit int) ([]store.SessionReport, error) {
	if f.reportsFn == nil {
		return nil, nil
	}
	return f.reportsFn(deckID, limit)
}

func (f *fakeService) PostponeCard(_ context.Context, deckID, cardID uuid.UUID, days int) (domain.Card, error) {
	if f.postponeFn == nil {
		return domain.Card{}, nil
	}
	return f.postponeFn(deckID, cardID, days)
}

func (f *fakeService) DeleteCard(_ context.Context, deckID, cardID uuid.UUID) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(deckID, cardID)
}
