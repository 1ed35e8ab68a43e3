// Package httpapi is the JSON client for the scheduling server.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/pkg/observability"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request id to the server.
const RequestIDHeader = "X-Request-ID"

// ErrUnavailable is wrapped in a TransportError while the circuit breaker
// is open.
var ErrUnavailable = errors.New("scheduling server unavailable")

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Token, when set, is sent as a bearer token on every request.
	Token string

	// RateLimit is the sustained requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int

	BreakerEnabled          bool
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
}

// DefaultConfig returns a config for a local development server.
func DefaultConfig() Config {
	return Config{
		BaseURL:                 "http://localhost:5000/api",
		Timeout:                 15 * time.Second,
		RateLimit:               5,
		RateBurst:               5,
		BreakerEnabled:          true,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          30 * time.Second,
	}
}

// CookieStore persists the server session cookies between invocations.
type CookieStore interface {
	LoadCookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
}

// Client sends JSON requests to the scheduling server.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[any]
	cookies CookieStore
	logger  *slog.Logger

	mu      sync.Mutex
	session map[string]*http.Cookie
	loaded  bool
}

// NewClient creates a client. A nil cookie store keeps the session in memory.
func NewClient(cfg Config, cookies CookieStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Token != "" {
		transport = &oauthTransport{
			base:   transport,
			source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
		}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		cookies: cookies,
		logger:  logger,
		session: make(map[string]*http.Cookie),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.BreakerEnabled {
		threshold := cfg.BreakerFailureThreshold
		if threshold == 0 {
			threshold = DefaultConfig().BreakerFailureThreshold
		}
		c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "scheduling-api",
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !isServerFault(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}

	return c
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, op, path string, out any) error {
	return c.Do(ctx, op, http.MethodGet, path, nil, out)
}

// Post sends in as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, op, path string, in, out any) error {
	return c.Do(ctx, op, http.MethodPost, path, in, out)
}

// Put sends in as JSON and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, op, path string, in, out any) error {
	return c.Do(ctx, op, http.MethodPut, path, in, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, op, path string) error {
	return c.Do(ctx, op, http.MethodDelete, path, nil, nil)
}

// Do sends one request. Failures are returned as the shared error kinds:
// network failures as TransportError, 400 as ValidationError, 403 as
// PermissionError and any other non-2xx as OperationError. A nil out
// discards the response body.
func (c *Client) Do(ctx context.Context, op, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &sharedDomain.TransportError{Op: op, Err: err}
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, op, method, path, in, out)
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, op, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &sharedDomain.TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	ctx, requestID := observability.EnsureRequestID(ctx)
	req.Header.Set(RequestIDHeader, requestID)
	log := observability.LogOperation(c.logger, op, "method", method, "path", path)

	for _, cookie := range c.sessionCookies(ctx) {
		req.AddCookie(cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.DebugContext(ctx, "api request failed", observability.ErrorKey, err)
		return &sharedDomain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.DebugContext(ctx, "api request",
		observability.StatusKey, resp.StatusCode,
		observability.DurationKey, time.Since(start).Milliseconds(),
	)

	c.storeCookies(ctx, resp.Cookies())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &sharedDomain.OperationError{Op: op, StatusCode: resp.StatusCode, Message: "unreadable response from server"}
	}
	return nil
}

// ClearSession forgets the server session.
func (c *Client) ClearSession(ctx context.Context) error {
	c.mu.Lock()
	c.session = make(map[string]*http.Cookie)
	c.loaded = true
	c.mu.Unlock()

	if c.cookies == nil {
		return nil
	}
	return c.cookies.SaveCookies(ctx, nil)
}

func (c *Client) sessionCookies(ctx context.Context) []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded && c.cookies != nil {
		stored, err := c.cookies.LoadCookies(ctx)
		if err != nil {
			c.logger.Warn("could not load stored session", "error", err)
		}
		for _, cookie := range stored {
			c.session[cookie.Name] = cookie
		}
	}
	c.loaded = true

	out := make([]*http.Cookie, 0, len(c.session))
	for _, cookie := range c.session {
		out = append(out, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return out
}

func (c *Client) storeCookies(ctx context.Context, received []*http.Cookie) {
	if len(received) == 0 {
		return
	}

	c.mu.Lock()
	for _, cookie := range received {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.session, cookie.Name)
			continue
		}
		c.session[cookie.Name] = cookie
	}
	snapshot := make([]*http.Cookie, 0, len(c.session))
	for _, cookie := range c.session {
		snapshot = append(snapshot, cookie)
	}
	c.mu.Unlock()

	if c.cookies == nil {
		return
	}
	if err := c.cookies.SaveCookies(ctx, snapshot); err != nil {
		c.logger.Warn("could not persist session", "error", err)
	}
}

// responseError maps a non-2xx response to an error kind. The server
// reports details as {"message": ...} or {"error": ...}.
func responseError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		message = payload.Message
		if message == "" {
			message = payload.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &sharedDomain.ValidationError{Message: message}
	case http.StatusForbidden:
		return &sharedDomain.PermissionError{Op: op, Message: message}
	default:
		return &sharedDomain.OperationError{Op: op, StatusCode: resp.StatusCode, Message: message}
	}
}

// isServerFault reports whether err should count against the circuit
// breaker.
func isServerFault(err error) bool {
	if errors.Is(err, sharedDomain.ErrTransport) {
		return !errors.Is(err, context.Canceled)
	}
	var operation *sharedDomain.OperationError
	return errors.As(err, &operation) && operation.StatusCode >= 500
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	token.SetAuthHeader(req)
	return t.base.RoundTrip(req)
}
