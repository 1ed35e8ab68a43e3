package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// API
	APIURL      string
	APIToken    string
	HTTPTimeout time.Duration

	// Outbound rate limiting (requests per second, 0 disables)
	RateLimit float64
	RateBurst int

	// Circuit breaker
	BreakerEnabled          bool
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration

	// Session store
	SessionStore string
	SQLitePath   string
	RedisURL     string

	// Display
	Timezone      string
	ClockInterval time.Duration
	UpcomingLimit int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		APIURL:      strings.TrimRight(getEnv("HUDDLE_API_URL", "http://localhost:5000/api"), "/"),
		APIToken:    getEnv("HUDDLE_API_TOKEN", ""),
		HTTPTimeout: getDurationEnv("HUDDLE_HTTP_TIMEOUT", 15*time.Second),

		RateLimit: getFloatEnv("HUDDLE_RATE_LIMIT", 5),
		RateBurst: getIntEnv("HUDDLE_RATE_BURST", 5),

		BreakerEnabled:          getBoolEnv("HUDDLE_BREAKER_ENABLED", true),
		BreakerFailureThreshold: uint32(getIntEnv("HUDDLE_BREAKER_FAILURES", 5)),
		BreakerTimeout:          getDurationEnv("HUDDLE_BREAKER_TIMEOUT", 30*time.Second),

		SessionStore: getEnv("HUDDLE_SESSION_STORE", SessionStoreSQLite),
		SQLitePath:   getEnv("HUDDLE_SQLITE_PATH", defaultSQLitePath()),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Timezone:      getEnv("HUDDLE_TIMEZONE", ""),
		ClockInterval: getDurationEnv("HUDDLE_CLOCK_INTERVAL", time.Second),
		UpcomingLimit: getIntEnv("HUDDLE_UPCOMING_LIMIT", 5),
	}

	return cfg, nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".huddle", "huddle.db")
	}
	return filepath.Join(home, ".huddle", "huddle.db")
}
