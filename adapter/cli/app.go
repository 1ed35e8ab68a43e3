package cli

import (
	"context"
	"errors"
	"time"

	internalApp "github.com/felixgeelhaar/huddle/internal/app"
	"github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	"github.com/felixgeelhaar/huddle/internal/identity/application/settings"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/services"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/session"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/infrastructure/ical"
	"github.com/felixgeelhaar/huddle/internal/shared/clock"
)

// ErrNotConfigured is returned when a command runs without a wired app.
var ErrNotConfigured = errors.New("huddle is not configured")

// App holds the CLI application dependencies.
type App struct {
	Registry        *services.MeetingRegistry
	Directory       meetingsDomain.UserDirectory
	Exporter        *ical.Exporter
	AuthService     *auth.Service
	SettingsService *settings.Service

	// UpcomingLimit is how many meetings the dashboard shows.
	UpcomingLimit int

	container *internalApp.Container
}

// NewApp creates the CLI app from a wired container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		Registry:        c.Registry,
		Directory:       c.MeetingGateway,
		Exporter:        c.Exporter,
		AuthService:     c.AuthService,
		SettingsService: c.SettingsService,
		UpcomingLimit:   c.Config.UpcomingLimit,
		container:       c,
	}
}

// Timezone resolves the viewer's display zone. --tz wins over everything.
func (a *App) Timezone(ctx context.Context) string {
	return a.container.Timezone(ctx, timezoneFlag)
}

// NewSchedulingSession creates a session in the viewer's timezone.
func (a *App) NewSchedulingSession(ctx context.Context) *session.Controller {
	return a.container.NewSchedulingSession(a.Timezone(ctx))
}

// NewTicker creates the live clock ticker.
func (a *App) NewTicker(onTick func(time.Time)) *clock.Ticker {
	return a.container.NewTicker(onTick)
}

// Now returns the current time.
func (a *App) Now() time.Time {
	return a.container.Clock()
}

// CurrentUser returns the signed-in session or auth.ErrNotSignedIn.
func (a *App) CurrentUser(ctx context.Context) (meetingsDomain.UserID, error) {
	s, err := a.AuthService.Current(ctx)
	if err != nil {
		return 0, err
	}
	return meetingsDomain.UserID(s.UserID), nil
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// RequireApp returns the app or ErrNotConfigured.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotConfigured
	}
	return app, nil
}
