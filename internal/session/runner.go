package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// Phase is the runner's position in the per-card cycle.
type Phase int

const (
	PhaseSelecting  Phase = iota // next card chosen, front not yet shown
	PhasePresenting              // front shown
	PhaseRevealed                // back shown, waiting for a grade
	PhaseComplete                // every card answered
)

var phaseNames = [...]string{
	PhaseSelecting:  "selecting",
	PhasePresenting: "presenting",
	PhaseRevealed:   "revealed",
	PhaseComplete:   "complete",
}

// String returns the lowercase phase name.
func (p Phase) String() string {
	if p >= PhaseSelecting && p <= PhaseComplete {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Scheduler computes a card's next state for a grade at a given time.
// *srs.Scheduler satisfies it.
type Scheduler interface {
	NextState(card domain.Card, grade domain.Grade, now time.Time) (domain.Card, error)
}

// Answer is one entry of the session's answer log.
type Answer struct {
	Grade      domain.Grade `json:"grade"`
	CardID     uuid.UUID    `json:"card_id"`
	AnsweredAt time.Time    `json:"answered_at"`
}

// Stats are the running accumulators of a session.
type Stats struct {
	CardsStudied   int      `json:"cards_studied"`
	TotalAnswers   int      `json:"total_answers"`
	CorrectAnswers int      `json:"correct_answers"`
	StreakCount    int      `json:"streak_count"`
	LongestStreak  int      `json:"longest_streak"`
	Answers        []Answer `json:"answers"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used for answer timestamps, scheduling and study time.
func WithClock(clock domain.Clock) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithHardCountsAsCorrect makes Hard count toward accuracy. Hard still breaks the streak.
func WithHardCountsAsCorrect(enabled bool) Option {
	return func(r *Runner) {
		r.hardCountsAsCorrect = enabled
	}
}

// Runner drives a fixed, ordered session to completion.
//
// It is a synchronous state machine and not safe for concurrent use;
// callers serialize access.
type Runner struct {
	scheduler           Scheduler
	clock               domain.Clock
	hardCountsAsCorrect bool

	initial []domain.Card // snapshot at session start
	cards   []domain.Card // current state of every session card
	index   int
	phase   Phase

	stats     Stats
	startedAt time.Time
	endedAt   time.Time
	report    *Report
}

// NewRunner creates a Runner over a copy of cards. A non-empty session starts
// in Selecting at index 0; an empty session is Complete immediately.
func NewRunner(cards []domain.Card, scheduler Scheduler, opts ...Option) *Runner {
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}

	r := &Runner{
		scheduler: scheduler,
		clock:     domain.SystemClock,
		initial:   make([]domain.Card, len(cards)),
		cards:     make([]domain.Card, len(cards)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, c := range cards {
		r.initial[i] = c.Clone()
		r.cards[i] = c.Clone()
	}

	r.startedAt = r.clock()
	r.phase = PhaseSelecting
	if len(r.cards) == 0 {
		r.complete()
	}
	return r
}

// Phase returns the current phase.
func (r *Runner) Phase() Phase { return r.phase }

// Index returns the position of the current card.
func (r *Runner) Index() int { return r.index }

// Len returns the number of cards in the session.
func (r *Runner) Len() int { return len(r.cards) }

// StartedAt returns when the session started.
func (r *Runner) StartedAt() time.Time { return r.startedAt }

// Cards returns a copy of the session cards in their current state.
func (r *Runner) Cards() []domain.Card {
	out := make([]domain.Card, len(r.cards))
	for i, c := range r.cards {
		out[i] = c.Clone()
	}
	return out
}

// Stats returns a snapshot of the running accumulators.
func (r *Runner) Stats() Stats {
	s := r.stats
	s.Answers = append([]Answer(nil), r.stats.Answers...)
	return s
}

// CurrentCard returns the card at the current index without changing phase.
// It reports false once the session is complete.
func (r *Runner) CurrentCard() (domain.Card, bool) {
	if r.phase == PhaseComplete {
		return domain.Card{}, false
	}
	return r.cards[r.index].Clone(), true
}

// PresentCard shows the front of the current card: Selecting -> Presenting.
func (r *Runner) PresentCard() (domain.Card, error) {
	if r.phase != PhaseSelecting {
		return domain.Card{}, r.transitionError("present card")
	}
	r.phase = PhasePresenting
	return r.cards[r.index].Clone(), nil
}

// RevealAnswer shows the back of the current card: Presenting -> Revealed.
// Card state is not touched.
func (r *Runner) RevealAnswer() (domain.Card, error) {
	if r.phase != PhasePresenting {
		return domain.Card{}, r.transitionError("reveal answer")
	}
	r.phase = PhaseRevealed
	return r.cards[r.index].Clone(), nil
}

// AnswerCard grades the current card: Revealed -> Selecting(i+1) or Complete.
//
// The scheduler's result replaces the session's copy of the card and is
// returned for the caller to persist. If the scheduler rejects the grade the
// runner stays in Revealed and nothing is recorded.
func (r *Runner) AnswerCard(grade domain.Grade) (domain.Card, error) {
	if r.phase != PhaseRevealed {
		return domain.Card{}, r.transitionError("answer card")
	}

	now := r.clock()
	next, err := r.scheduler.NextState(r.cards[r.index], grade, now)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to schedule card %s: %w", r.cards[r.index].ID, err)
	}
	r.cards[r.index] = next

	r.record(next.ID, grade, now)

	r.index++
	if r.index == len(r.cards) {
		r.complete()
	} else {
		r.phase = PhaseSelecting
	}

	return next.Clone(), nil
}

// GenerateReport returns the session report. It is only valid once the
// session is Complete and returns the same report on every call.
func (r *Runner) GenerateReport() (Report, error) {
	if r.phase != PhaseComplete {
		return Report{}, r.transitionError("generate report")
	}
	if r.report == nil {
		report := buildReport(r.initial, r.cards, r.Stats(), r.startedAt, r.endedAt, r.hardCountsAsCorrect)
		r.report = &report
	}
	return r.report.clone(), nil
}

func (r *Runner) record(cardID uuid.UUID, grade domain.Grade, now time.Time) {
	r.stats.CardsStudied++
	r.stats.TotalAnswers++
	r.stats.Answers = append(r.stats.Answers, Answer{Grade: grade, CardID: cardID, AnsweredAt: now})

	if isCorrect(grade, r.hardCountsAsCorrect) {
		r.stats.CorrectAnswers++
	}

	if grade.IsCorrect() {
		r.stats.StreakCount++
		r.stats.LongestStreak = max(r.stats.LongestStreak, r.stats.StreakCount)
	} else {
		r.stats.StreakCount = 0
	}
}

func (r *Runner) complete() {
	r.phase = PhaseComplete
	r.endedAt = r.clock()
}

func (r *Runner) transitionError(op string) error {
	return fmt.Errorf("%w: cannot %s in phase %s", ErrInvalidTransition, op, r.phase)
}

func isCorrect(grade domain.Grade, hardCountsAsCorrect bool) bool {
	return grade.IsCorrect() || (hardCountsAsCorrect && grade == domain.GradeHard)
}
