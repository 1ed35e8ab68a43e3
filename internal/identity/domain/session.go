package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when no session is stored for a server.
var ErrSessionNotFound = errors.New("no stored session")

// Cookie is one server session cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the locally stored login for one scheduling server.
type Session struct {
	Server    string    `json:"server"`
	Cookies   []Cookie  `json:"cookies"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Timezone  string    `json:"timezone"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignedIn reports whether the session identifies a user.
func (s *Session) SignedIn() bool {
	return s != nil && s.UserID > 0
}

// Remember copies the identity fields of p into the session.
func (s *Session) Remember(p Profile) {
	s.UserID = p.ID
	s.Username = p.Username
	s.Timezone = p.Timezone
}

// Forget clears the identity and cookies.
func (s *Session) Forget() {
	s.Cookies = nil
	s.UserID = 0
	s.Username = ""
	s.Timezone = ""
}

// SessionRepository stores sessions keyed by server base URL.
type SessionRepository interface {
	Load(ctx context.Context, server string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, server string) error
}
