package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
)

// StartSessionRequest is the optional body of POST /decks/{deckID}/sessions.
// When a body is sent both limits are required.
type StartSessionRequest struct {
	NewCardsLimit    *int `json:"new_cards_limit"    validate:"required,session_limit"`
	ReviewCardsLimit *int `json:"review_cards_limit" validate:"required,session_limit"`
}

// Limits converts the request into session limits.
func (r StartSessionRequest) Limits() session.Limits {
	return session.Limits{NewCardsLimit: *r.NewCardsLimit, ReviewCardsLimit: *r.ReviewCardsLimit}
}

// AnswerRequest is the body of POST /sessions/{sessionID}/answer.
type AnswerRequest struct {
	Grade string `json:"grade" validate:"required,oneof=again hard good easy"`
}

// PostponeRequest is the body of POST /decks/{deckID}/cards/{cardID}/postpone.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=36500"`
}

// ImportCardsRequest is the body of POST /decks/{deckID}/cards.
type ImportCardsRequest struct {
	Cards []json.RawMessage `json:"cards" validate:"required,min=1,max=1000,dive,required"`
}

// CardFrontResponse shows a presented card before its answer is revealed.
type CardFrontResponse struct {
	ID    uuid.UUID        `json:"id"`
	State domain.CardState `json:"state"`
	Front string           `json:"front"`
	Hint  string           `json:"hint,omitempty"`
}

// CardResponse is the full view of a card, content included.
type CardResponse struct {
	ID         uuid.UUID        `json:"id"`
	DeckID     uuid.UUID        `json:"deck_id"`
	State      domain.CardState `json:"state"`
	EaseFactor float64          `json:"ease_factor"`
	Interval   int              `json:"interval"`
	DueDate    time.Time        `json:"due_date"`
	Reviews    int              `json:"reviews"`
	Lapses     int              `json:"lapses"`
	Content    json.RawMessage  `json:"content"`
}

// OutcomeResponse is where a card would land for one grade.
type OutcomeResponse struct {
	State    domain.CardState `json:"state"`
	Interval int              `json:"interval"`
	DueDate  time.Time        `json:"due_date"`
}

// RevealResponse is the revealed card and the outcome of every grade, for
// labelling the answer buttons.
type RevealResponse struct {
	Card    CardResponse                     `json:"card"`
	Outcome map[domain.Grade]OutcomeResponse `json:"outcome"`
}

// ReportResponse is one stored session report.
type ReportResponse struct {
	SessionID uuid.UUID      `json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	Report    session.Report `json:"report"`
}

// ReportsResponse lists a deck's stored reports, most recent first.
type ReportsResponse struct {
	DeckID  uuid.UUID        `json:"deck_id"`
	Reports []ReportResponse `json:"reports"`
}

// AnswerResponse is returned after grading a card.
type AnswerResponse struct {
	Card      CardResponse  `json:"card"`
	Phase     session.Phase `json:"phase"`
	Remaining int           `json:"remaining"`
}

// ImportCardsResponse lists the created cards.
type ImportCardsResponse struct {
	DeckID uuid.UUID      `json:"deck_id"`
	Cards  []CardResponse `json:"cards"`
}

func cardToResponse(c domain.Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		DeckID:     c.DeckID,
		State:      c.State,
		EaseFactor: c.EaseFactor,
		Interval:   c.Interval,
		DueDate:    c.DueDate,
		Reviews:    c.Reviews,
		Lapses:     c.Lapses,
		Content:    c.Content,
	}
}

// cardToFront hides the back of the card. Content that is not the usual
// front/back object renders with an empty front.
func cardToFront(c domain.Card) CardFrontResponse {
	resp := CardFrontResponse{ID: c.ID, State: c.State}
	if content, err := c.ParsedContent(); err == nil {
		resp.Front = content.Front
		resp.Hint = content.Hint
	}
	return resp
}

func answerToResponse(res study.AnswerResult) AnswerResponse {
	return AnswerResponse{
		Card:      cardToResponse(res.Card),
		Phase:     res.Phase,
		Remaining: res.Remaining,
	}
}

func revealToResponse(rev study.Reveal) RevealResponse {
	resp := RevealResponse{
		Card:    cardToResponse(rev.Card),
		Outcome: make(map[domain.Grade]OutcomeResponse, len(rev.Outcome)),
	}
	for g, c := range rev.Outcome {
		resp.Outcome[g] = OutcomeResponse{State: c.State, Interval: c.Interval, DueDate: c.DueDate}
	}
	return resp
}

func reportsToResponse(deckID uuid.UUID, reports []store.SessionReport) ReportsResponse {
	resp := ReportsResponse{DeckID: deckID, Reports: make([]ReportResponse, len(reports))}
	for i, r := range reports {
		resp.Reports[i] = ReportResponse{SessionID: r.SessionID, CreatedAt: r.CreatedAt, Report: r.Report}
	}
	return resp
}
