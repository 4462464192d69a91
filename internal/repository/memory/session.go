// Package memory keeps session snapshots in process memory. State never
// outlives the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionRepository implements repository.SessionRepository with a map.
type SessionRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionRepository creates a repository whose snapshots expire ttl after
// their last save. A zero ttl disables expiry.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the stored snapshot.
func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok || r.expired(e) {
		return nil, apperrors.NotFound("session", id)
	}
	s := e.session.Clone()
	return &s, nil
}

// Save stores a copy of session unless a newer version is already stored.
func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[session.ID]; ok && !r.expired(cur) && cur.session.Version > session.Version {
		return nil
	}
	e := entry{session: session.Clone()}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.entries[session.ID] = e
	return nil
}

// Delete removes a snapshot.
func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

// Sweep drops expired snapshots and returns how many were removed.
func (r *SessionRepository) Sweep(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored snapshots, expired ones included.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *SessionRepository) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt)
}
