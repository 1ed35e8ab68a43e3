package persistence

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServer = "http://localhost:5000/api"

func newSQLiteRepo(t *testing.T) *SQLiteSessionRepository {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "huddle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, db))

	return NewSQLiteSessionRepository(db)
}

func newRedisRepo(t *testing.T) *RedisSessionRepository {
	t.Helper()
	url := os.Getenv("HUDDLE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HUDDLE_TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return NewRedisSessionRepository(client, time.Minute)
}

func repositories(t *testing.T) map[string]func(t *testing.T) domain.SessionRepository {
	return map[string]func(t *testing.T) domain.SessionRepository{
		"memory": func(t *testing.T) domain.SessionRepository { return NewMemorySessionRepository() },
		"sqlite": func(t *testing.T) domain.SessionRepository { return newSQLiteRepo(t) },
		"redis":  func(t *testing.T) domain.SessionRepository { return newRedisRepo(t) },
	}
}

func TestSessionRepository_Contract(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()
			server := testServer + "/" + name

			_, err := repo.Load(ctx, server)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)

			updated := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
			require.NoError(t, repo.Save(ctx, &domain.Session{
				Server:    server,
				Cookies:   []domain.Cookie{{Name: "session", Value: "abc"}},
				UserID:    7,
				Username:  "alice",
				Timezone:  "Europe/Berlin",
				UpdatedAt: updated,
			}))

			loaded, err := repo.Load(ctx, server)
			require.NoError(t, err)
			assert.Equal(t, server, loaded.Server)
			assert.Equal(t, []domain.Cookie{{Name: "session", Value: "abc"}}, loaded.Cookies)
			assert.Equal(t, int64(7), loaded.UserID)
			assert.Equal(t, "alice", loaded.Username)
			assert.Equal(t, "Europe/Berlin", loaded.Timezone)
			assert.True(t, updated.Equal(loaded.UpdatedAt))

			loaded.Forget()
			require.NoError(t, repo.Save(ctx, loaded))
			reloaded, err := repo.Load(ctx, server)
			require.NoError(t, err)
			assert.False(t, reloaded.SignedIn())
			assert.Empty(t, reloaded.Cookies)

			require.NoError(t, repo.Delete(ctx, server))
			assert.ErrorIs(t, repo.Delete(ctx, server), domain.ErrSessionNotFound)
		})
	}
}

func TestMemorySessionRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	session := &domain.Session{Server: testServer, Cookies: []domain.Cookie{{Name: "a", Value: "1"}}}
	require.NoError(t, repo.Save(ctx, session))
	session.Cookies[0].Value = "changed"

	loaded, err := repo.Load(ctx, testServer)
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.Cookies[0].Value)
}

func TestCookieStore(t *testing.T) {
	repo := NewMemorySessionRepository()
	store := NewCookieStore(repo, testServer)
	ctx := context.Background()

	cookies, err := store.LoadCookies(ctx)
	require.NoError(t, err)
	assert.Empty(t, cookies)

	require.NoError(t, store.SaveCookies(ctx, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}}))
	require.NoError(t, repo.Save(ctx, func() *domain.Session {
		s, _ := repo.Load(ctx, testServer)
		s.Remember(domain.Profile{ID: 3, Username: "carol"})
		return s
	}()))

	cookies, err = store.LoadCookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)

	require.NoError(t, store.SaveCookies(ctx, nil))
	session, err := repo.Load(ctx, testServer)
	require.NoError(t, err)
	assert.False(t, session.SignedIn())
	assert.Empty(t, session.Cookies)
}
