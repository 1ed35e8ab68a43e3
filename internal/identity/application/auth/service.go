// Package auth signs the user in and out of the scheduling server and
// remembers who is signed in.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// ErrNotSignedIn is returned when an operation needs a signed-in user.
var ErrNotSignedIn = errors.New("not signed in")

// Gateway is the server side of authentication.
type Gateway interface {
	Login(ctx context.Context, email, password string) (domain.Profile, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, username, email, password string) error
	CheckSession(ctx context.Context) (domain.Profile, error)
}

// Service manages the signed-in session for one server.
type Service struct {
	gateway  Gateway
	sessions domain.SessionRepository
	server   string
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates an auth service for the server at baseURL.
func NewService(gateway Gateway, sessions domain.SessionRepository, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		server:   baseURL,
		now:      time.Now,
		logger:   logger,
	}
}

// Login signs in and records the user on the stored session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return domain.Profile{}, &sharedDomain.ValidationError{Field: "email", Message: err.Error()}
	}
	if password == "" {
		return domain.Profile{}, &sharedDomain.ValidationError{Field: "password", Message: "password is required"}
	}

	profile, err := s.gateway.Login(ctx, addr.String(), password)
	if err != nil {
		if sharedDomain.IsUnauthenticated(err) {
			return domain.Profile{}, &sharedDomain.ValidationError{Field: "credentials", Message: "invalid email or password"}
		}
		return domain.Profile{}, err
	}
	if err := s.remember(ctx, profile); err != nil {
		return domain.Profile{}, err
	}

	s.logger.Info("signed in", "user_id", profile.ID, "username", profile.Username)
	return profile, nil
}

// Logout signs out. The stored session is removed even when the server
// already considers the session over.
func (s *Service) Logout(ctx context.Context) error {
	err := s.gateway.Logout(ctx)
	if err != nil && !sharedDomain.IsUnauthenticated(err) {
		return err
	}

	if err := s.sessions.Delete(ctx, s.server); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	s.logger.Info("signed out")
	return nil
}

// Register creates an account. It does not sign in.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	name, err := domain.NewUsername(username)
	if err != nil {
		return &sharedDomain.ValidationError{Field: "username", Message: err.Error()}
	}
	addr, err := domain.NewEmail(email)
	if err != nil {
		return &sharedDomain.ValidationError{Field: "email", Message: err.Error()}
	}
	if err := domain.ValidatePassword(password); err != nil {
		return &sharedDomain.ValidationError{Field: "password", Message: err.Error()}
	}

	if err := s.gateway.Register(ctx, name.String(), addr.String(), password); err != nil {
		return err
	}
	s.logger.Info("account registered", "username", name.String())
	return nil
}

// Status asks the server who is signed in.
func (s *Service) Status(ctx context.Context) (domain.Profile, error) {
	profile, err := s.gateway.CheckSession(ctx)
	if err != nil {
		if sharedDomain.IsUnauthenticated(err) {
			return domain.Profile{}, ErrNotSignedIn
		}
		return domain.Profile{}, err
	}
	if err := s.remember(ctx, profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// Current returns the locally stored session without contacting the server.
func (s *Service) Current(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessions.Load(ctx, s.server)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}
	if !session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	return session, nil
}

// Timezone resolves the viewer's display zone: an explicit override first,
// then the signed-in user's zone, then UTC.
func (s *Service) Timezone(ctx context.Context, override string) string {
	if tz := strings.TrimSpace(override); tz != "" {
		return tz
	}
	session, err := s.Current(ctx)
	if err != nil || session.Timezone == "" {
		return "UTC"
	}
	if err := timefmt.ValidateZone(session.Timezone); err != nil {
		s.logger.Warn("profile timezone unknown, showing UTC", "timezone", session.Timezone)
		return "UTC"
	}
	return session.Timezone
}

// Remember stores profile as the signed-in identity.
func (s *Service) Remember(ctx context.Context, profile domain.Profile) error {
	return s.remember(ctx, profile)
}

func (s *Service) remember(ctx context.Context, profile domain.Profile) error {
	session, err := s.sessions.Load(ctx, s.server)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		session = &domain.Session{Server: s.server}
	}
	session.Remember(profile)
	session.UpdatedAt = s.now().UTC()
	return s.sessions.Save(ctx, session)
}
