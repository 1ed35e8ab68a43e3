// Package app wires the huddle client together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	"github.com/felixgeelhaar/huddle/internal/identity/application/settings"
	identityDomain "github.com/felixgeelhaar/huddle/internal/identity/domain"
	identityAPI "github.com/felixgeelhaar/huddle/internal/identity/infrastructure/api"
	identityPersistence "github.com/felixgeelhaar/huddle/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/services"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/session"
	meetingsAPI "github.com/felixgeelhaar/huddle/internal/meetings/infrastructure/api"
	"github.com/felixgeelhaar/huddle/internal/meetings/infrastructure/ical"
	"github.com/felixgeelhaar/huddle/internal/shared/clock"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/httpapi"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/redis/go-redis/v9"
)

// sessionTTL bounds how long a Redis-stored login survives without use.
const sessionTTL = 30 * 24 * time.Hour

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  clock.Clock

	// Session storage
	DB          *sql.DB
	RedisClient *redis.Client
	Sessions    identityDomain.SessionRepository

	// Transport
	Client *httpapi.Client

	// Gateways
	MeetingGateway  *meetingsAPI.Gateway
	IdentityGateway *identityAPI.Gateway

	// Services
	Registry        *services.MeetingRegistry
	Suggestions     *services.SlotSuggestionOrchestrator
	Exporter        *ical.Exporter
	AuthService     *auth.Service
	SettingsService *settings.Service
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Clock:  clock.System,
	}

	sessions, err := c.openSessionStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Sessions = sessions

	c.Client = httpapi.NewClient(httpapi.Config{
		BaseURL:                 cfg.APIURL,
		Timeout:                 cfg.HTTPTimeout,
		Token:                   cfg.APIToken,
		RateLimit:               cfg.RateLimit,
		RateBurst:               cfg.RateBurst,
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerFailureThreshold: cfg.BreakerFailureThreshold,
		BreakerTimeout:          cfg.BreakerTimeout,
	}, identityPersistence.NewCookieStore(sessions, cfg.APIURL), logger)

	c.MeetingGateway = meetingsAPI.NewGateway(c.Client, logger)
	c.IdentityGateway = identityAPI.NewGateway(c.Client)

	c.Registry = services.NewMeetingRegistry(c.MeetingGateway, c.Clock, logger)
	c.Suggestions = services.NewSlotSuggestionOrchestrator(c.MeetingGateway, logger)
	c.Exporter = ical.NewExporter(hostOf(cfg.APIURL), c.Clock)

	c.AuthService = auth.NewService(c.IdentityGateway, sessions, cfg.APIURL, logger)
	c.SettingsService = settings.NewService(c.IdentityGateway, c.AuthService)

	return c, nil
}

func (c *Container) openSessionStore(ctx context.Context) (identityDomain.SessionRepository, error) {
	switch c.Config.SessionStore {
	case config.SessionStoreMemory:
		return identityPersistence.NewMemorySessionRepository(), nil

	case config.SessionStoreRedis:
		opt, err := redis.ParseURL(c.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.RedisClient = client
		c.Logger.Debug("connected to Redis")
		return identityPersistence.NewRedisSessionRepository(client, sessionTTL), nil

	case config.SessionStoreSQLite, "":
		db, err := sqlite.Open(ctx, c.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLite(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.DB = db
		c.Logger.Debug("opened session database", "path", c.Config.SQLitePath)
		return identityPersistence.NewSQLiteSessionRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported session store: %s", c.Config.SessionStore)
	}
}

// Timezone resolves the viewer's display zone: override, then the
// configured zone, then the signed-in user's zone. Unknown zones are logged
// and skipped.
func (c *Container) Timezone(ctx context.Context, override string) string {
	candidates := []struct{ source, zone string }{
		{"--tz", override},
		{"HUDDLE_TIMEZONE", c.Config.Timezone},
	}
	for _, candidate := range candidates {
		zone := strings.TrimSpace(candidate.zone)
		if zone == "" {
			continue
		}
		if err := timefmt.ValidateZone(zone); err != nil {
			c.Logger.Warn("ignoring unknown timezone", "source", candidate.source, "timezone", zone)
			continue
		}
		return zone
	}
	return c.AuthService.Timezone(ctx, "")
}

// NewSchedulingSession creates a scheduling session displayed in tz.
func (c *Container) NewSchedulingSession(tz string) *session.Controller {
	return session.NewController(c.Suggestions, c.Registry, c.MeetingGateway, session.Options{
		Timezone: tz,
		Now:      c.Clock,
		Logger:   c.Logger,
	})
}

// NewTicker creates the live clock ticker at the configured interval.
func (c *Container) NewTicker(onTick func(time.Time)) *clock.Ticker {
	return clock.NewTicker(c.Config.ClockInterval, onTick, c.Logger).WithClock(c.Clock)
}

// Close releases all resources.
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
