// Package api implements the identity gateways against the scheduling
// server's JSON API.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	"github.com/felixgeelhaar/huddle/internal/identity/application/settings"
	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// Requester sends JSON requests to the server and owns its session cookies.
type Requester interface {
	Get(ctx context.Context, op, path string, out any) error
	Post(ctx context.Context, op, path string, in, out any) error
	Put(ctx context.Context, op, path string, in, out any) error
	ClearSession(ctx context.Context) error
}

// Gateway implements auth.Gateway and settings.Gateway.
type Gateway struct {
	client Requester
}

var (
	_ auth.Gateway     = (*Gateway)(nil)
	_ settings.Gateway = (*Gateway)(nil)
)

// NewGateway creates a gateway.
func NewGateway(client Requester) *Gateway {
	return &Gateway{client: client}
}

type userDTO struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Timezone          string `json:"timezone"`
	WorkingHoursStart string `json:"working_hours_start"`
	WorkingHoursEnd   string `json:"working_hours_end"`
}

type userEnvelope struct {
	Message  string   `json:"message"`
	LoggedIn bool     `json:"logged_in"`
	User     *userDTO `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username          *string `json:"username,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
	WorkingHoursStart *string `json:"working_hours_start,omitempty"`
	WorkingHoursEnd   *string `json:"working_hours_end,omitempty"`
}

// Login signs in. The server sets the session cookie on success.
func (g *Gateway) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	var resp userEnvelope
	if err := g.client.Post(ctx, "login", "/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return domain.Profile{}, err
	}
	return resp.profile("login")
}

// Logout ends the server session and forgets the local cookies.
func (g *Gateway) Logout(ctx context.Context) error {
	err := g.client.Post(ctx, "logout", "/logout", nil, nil)
	if clearErr := g.client.ClearSession(ctx); clearErr != nil && err == nil {
		err = fmt.Errorf("clear session: %w", clearErr)
	}
	return err
}

// Register creates an account.
func (g *Gateway) Register(ctx context.Context, username, email, password string) error {
	req := registerRequest{Username: username, Email: email, Password: password}
	return g.client.Post(ctx, "register", "/register", req, nil)
}

// CheckSession returns the signed-in user.
func (g *Gateway) CheckSession(ctx context.Context) (domain.Profile, error) {
	var resp userEnvelope
	if err := g.client.Get(ctx, "check session", "/check_session", &resp); err != nil {
		return domain.Profile{}, err
	}
	if !resp.LoggedIn {
		return domain.Profile{}, &sharedDomain.OperationError{Op: "check session", StatusCode: http.StatusUnauthorized}
	}
	return resp.profile("check session")
}

// GetProfile returns the signed-in user's profile.
func (g *Gateway) GetProfile(ctx context.Context) (domain.Profile, error) {
	var dto userDTO
	if err := g.client.Get(ctx, "get profile", "/profile", &dto); err != nil {
		return domain.Profile{}, err
	}
	return dto.toDomain("get profile")
}

// UpdateProfile sends only the fields set on update.
func (g *Gateway) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error) {
	req := profileRequest{
		Username: update.Username,
		Timezone: update.Timezone,
	}
	if update.WorkingHoursStart != nil {
		s := update.WorkingHoursStart.String()
		req.WorkingHoursStart = &s
	}
	if update.WorkingHoursEnd != nil {
		s := update.WorkingHoursEnd.String()
		req.WorkingHoursEnd = &s
	}

	var resp userEnvelope
	if err := g.client.Put(ctx, "update profile", "/profile", req, &resp); err != nil {
		return domain.Profile{}, err
	}
	return resp.profile("update profile")
}

// ListTimezones returns the zone names the server accepts.
func (g *Gateway) ListTimezones(ctx context.Context) ([]string, error) {
	var zones []string
	if err := g.client.Get(ctx, "list timezones", "/timezones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (e userEnvelope) profile(op string) (domain.Profile, error) {
	if e.User == nil {
		return domain.Profile{}, &sharedDomain.OperationError{Op: op, Message: "response did not include the user"}
	}
	return e.User.toDomain(op)
}

func (dto userDTO) toDomain(op string) (domain.Profile, error) {
	profile := domain.Profile{
		ID:       dto.ID,
		Username: dto.Username,
		Email:    dto.Email,
		Timezone: dto.Timezone,
	}

	var err error
	if dto.WorkingHoursStart != "" {
		if profile.WorkingHoursStart, err = timefmt.ParseClockTime(dto.WorkingHoursStart); err != nil {
			return domain.Profile{}, &sharedDomain.OperationError{Op: op, Message: fmt.Sprintf("unreadable working hours %q", dto.WorkingHoursStart)}
		}
	}
	if dto.WorkingHoursEnd != "" {
		if profile.WorkingHoursEnd, err = timefmt.ParseClockTime(dto.WorkingHoursEnd); err != nil {
			return domain.Profile{}, &sharedDomain.OperationError{Op: op, Message: fmt.Sprintf("unreadable working hours %q", dto.WorkingHoursEnd)}
		}
	}
	return profile, nil
}
