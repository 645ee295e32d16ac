// Package session keeps the register sessions that carry an Intake's
// hospital and attendance number to the remaining register stages.
package session

import (
	"sync"
	"time"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
)

// Registry holds open sessions in memory. Sessions idle longer than the TTL
// are dropped lazily on access.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*careline.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*careline.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// Open starts a new empty session.
func (r *Registry) Open() *careline.Session {
	now := r.now()
	s := careline.NewSession(now)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	r.sessions[s.ID.String()] = s
	return s
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*careline.Session, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, careline.ErrSessionNotFound
	}
	if r.expired(s, now) {
		delete(r.sessions, id)
		return nil, careline.ErrSessionNotFound
	}
	s.Touch(now)
	return s, nil
}

// Close discards a session and its context.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return careline.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len counts live sessions.
func (r *Registry) Len() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	return len(r.sessions)
}

func (r *Registry) expired(s *careline.Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.LastUsed()) > r.ttl
}

func (r *Registry) sweepLocked(now time.Time) {
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
		}
	}
}
