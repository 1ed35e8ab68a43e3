package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository stores sessions in Redis so several machines can
// share one login. Keys are namespaced as huddle:session:{server}.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domain.SessionRepository = (*RedisSessionRepository)(nil)

// NewRedisSessionRepository creates a repository. A zero ttl stores
// sessions without expiration.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func sessionKey(server string) string {
	return "huddle:session:" + server
}

// Load returns the session for server.
func (r *RedisSessionRepository) Load(ctx context.Context, server string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(server)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.Server = server
	return &session, nil
}

// Save stores the session.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.Server), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session for server.
func (r *RedisSessionRepository) Delete(ctx context.Context, server string) error {
	n, err := r.client.Del(ctx, sessionKey(server)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
