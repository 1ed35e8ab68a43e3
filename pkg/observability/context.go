package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// idKey selects one of the ids a command carries through its context.
type idKey int

const (
	correlationID idKey = iota
	requestID
)

// Log attribute keys.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

// WithCorrelationID tags ctx with the id shared by every log line and API
// call of one command invocation. An empty id gets a fresh UUID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withID(ctx, correlationID, id)
}

// CorrelationIDFromContext returns the command's correlation id, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationID)
}

// WithRequestID tags ctx with the id sent as X-Request-ID on one API call.
// An empty id gets a fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestID, id)
}

// RequestIDFromContext returns the API request id, if any.
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestID)
}

// EnsureRequestID returns ctx carrying a request id, keeping the caller's
// id when one is already set.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	ctx = WithRequestID(ctx, "")
	return ctx, RequestIDFromContext(ctx)
}

// contextAttrs lists the ids in ctx as log attributes.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String(CorrelationIDKey, id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String(RequestIDKey, id))
	}
	return attrs
}

func withID(ctx context.Context, key idKey, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key).(string)
	return id
}
