package study

import (
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/session"
)

// liveSession is one in-progress sitting. mu serializes every call on the
// runner, which is not safe for concurrent use on its own.
type liveSession struct {
	mu       sync.Mutex
	id       uuid.UUID
	deckID   uuid.UUID
	runner   *session.Runner
	recorded bool // completion event already emitted
}

// registry holds live sessions by ID.
type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*liveSession)}
}

func (r *registry) add(s *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *registry) get(id uuid.UUID) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *registry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
