package exercise

import (
	"errors"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("exercise: session not found")

// Registry holds live sessions in memory, keyed by session ID. Sessions are
// transient: they are dropped on completion, depletion, or abandonment, and
// never outlive the process. Durable state lives with the progression layer.
//
// Abandoned sessions (the learner navigated away and never completed) are
// reclaimed by Sweep; every Put and Get refreshes the idle clock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*registryEntry{}}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &registryEntry{session: s, lastSeen: time.Now()}
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = time.Now()
	return e.session, nil
}

// Remove drops the session. Removing before running the progression
// protocol guarantees the same session object can never commit twice; a
// replay starts a fresh session and hits the server-side stale guard.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Sweep evicts sessions idle longer than maxIdle and reports how many were
// dropped. An evicted session was abandoned mid-lesson; it earned nothing,
// so there is no state to flush.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
