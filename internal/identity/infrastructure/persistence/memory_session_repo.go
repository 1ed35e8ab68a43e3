package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
)

// MemorySessionRepository keeps sessions for the life of the process.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

var _ domain.SessionRepository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domain.Session)}
}

// Load returns a copy of the session for server.
func (r *MemorySessionRepository) Load(_ context.Context, server string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[server]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.Cookies = append([]domain.Cookie(nil), session.Cookies...)
	return &session, nil
}

// Save stores a copy of the session.
func (r *MemorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	stored.Cookies = append([]domain.Cookie(nil), session.Cookies...)
	r.sessions[session.Server] = stored
	return nil
}

// Delete removes the session for server.
func (r *MemorySessionRepository) Delete(_ context.Context, server string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[server]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, server)
	return nil
}
