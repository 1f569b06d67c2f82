package study

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

// fakeCardRepo is an in-memory CardRepository with the same versioning rules
// as the Postgres store.
type fakeCardRepo struct {
	mu        sync.Mutex
	cards     map[uuid.UUID]domain.Card
	order     []uuid.UUID
	listErr   error
	updateErr error
	createErr error
	getErr    error
	deleteErr error
	updates   int
}

func newFakeCardRepo(cards ...domain.Card) *fakeCardRepo {
	r := &fakeCardRepo{cards: make(map[uuid.UUID]domain.Card)}
	for _, c := range cards {
		r.put(c)
	}
	return r
}

func (r *fakeCardRepo) put(c domain.Card) {
	if c.Version == 0 {
		c.Version = 1
	}
	if _, ok := r.cards[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.cards[c.ID] = c.Clone()
}

func (r *fakeCardRepo) get(id uuid.UUID) domain.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cards[id].Clone()
}

func (r *fakeCardRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	c = c.Clone()
	return &c, nil
}

func (r *fakeCardRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(r.cards, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeCardRepo) has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cards[id]
	return ok
}

func (r *fakeCardRepo) ListByDeck(_ context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Card, 0)
	for _, id := range r.order {
		if c := r.cards[id]; c.DeckID == deckID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (r *fakeCardRepo) Update(_ context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	current, ok := r.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}
	if current.Version != card.Version {
		return store.ErrVersionConflict
	}
	card.Version++
	r.cards[card.ID] = card.Clone()
	return nil
}

func (r *fakeCardRepo) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, c := range cards {
		r.put(*c)
	}
	return nil
}

// fakeTxRunner hands the repository straight to fn and counts calls.
func fakeTxRunner(repo CardRepository, calls *int) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context, cards CardRepository) error) error {
		*calls++
		return fn(ctx, repo)
	}
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[uuid.UUID]store.SessionReport
	saveErr error
	listErr error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[uuid.UUID]store.SessionReport)}
}

func (r *fakeReportRepo) Save(_ context.Context, report *store.SessionReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.reports[report.SessionID]; ok {
		return store.ErrDuplicate
	}
	r.reports[report.SessionID] = *report
	return nil
}

func (r *fakeReportRepo) GetBySessionID(_ context.Context, id uuid.UUID) (*store.SessionReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, store.ErrSessionReportNotFound
	}
	return &report, nil
}

func (r *fakeReportRepo) ListByDeck(_ context.Context, deckID uuid.UUID, limit int) ([]store.SessionReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]store.SessionReport, 0)
	for _, report := range r.reports {
		if report.DeckID == deckID {
			out = append(out, report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeReportRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func content(front string) json.RawMessage {
	b, _ := json.Marshal(domain.CardContent{Front: front, Back: front + "?"})
	return b
}

func newDeckCard(deckID uuid.UUID, front string) domain.Card {
	return domain.Card{
		ID:         uuid.New(),
		DeckID:     deckID,
		State:      domain.StateNew,
		EaseFactor: domain.DefaultEaseFactor,
		DueDate:    t0.Add(-time.Hour),
		Content:    content(front),
		Version:    1,
	}
}

func reviewDeckCard(deckID uuid.UUID, front string) domain.Card {
	c := newDeckCard(deckID, front)
	c.State = domain.StateReview
	c.Interval = 10
	c.Reviews = 6
	c.DueDate = t0.Add(-24 * time.Hour)
	return c
}
