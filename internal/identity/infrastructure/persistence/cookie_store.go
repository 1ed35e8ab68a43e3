package persistence

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
)

// CookieStore keeps the HTTP client's session cookies on the stored
// session for one server.
type CookieStore struct {
	sessions domain.SessionRepository
	server   string
}

// NewCookieStore creates a cookie store backed by sessions.
func NewCookieStore(sessions domain.SessionRepository, server string) *CookieStore {
	return &CookieStore{sessions: sessions, server: server}
}

// LoadCookies returns the stored cookies. A missing session has none.
func (s *CookieStore) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	session, err := s.sessions.Load(ctx, s.server)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, 0, len(session.Cookies))
	for _, c := range session.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

// SaveCookies replaces the stored cookies. Saving no cookies also forgets
// the signed-in identity.
func (s *CookieStore) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	session, err := s.sessions.Load(ctx, s.server)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		session = &domain.Session{Server: s.server}
	}

	if len(cookies) == 0 {
		session.Forget()
	} else {
		session.Cookies = make([]domain.Cookie, 0, len(cookies))
		for _, c := range cookies {
			session.Cookies = append(session.Cookies, domain.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	session.UpdatedAt = time.Now().UTC()
	return s.sessions.Save(ctx, session)
}
