package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/domain"
)

// SQLiteSessionRepository stores sessions in the local SQLite database.
type SQLiteSessionRepository struct {
	db *sql.DB
}

var _ domain.SessionRepository = (*SQLiteSessionRepository)(nil)

// NewSQLiteSessionRepository creates a new SQLiteSessionRepository.
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Load returns the session for server.
func (r *SQLiteSessionRepository) Load(ctx context.Context, server string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT cookies, user_id, username, timezone, updated_at FROM sessions WHERE server = ?`,
		server,
	)

	var (
		cookies   string
		updatedAt string
		session   = domain.Session{Server: server}
	)
	if err := row.Scan(&cookies, &session.UserID, &session.Username, &session.Timezone, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if err := json.Unmarshal([]byte(cookies), &session.Cookies); err != nil {
		return nil, fmt.Errorf("decode session cookies: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		session.UpdatedAt = t
	}
	return &session, nil
}

// Save upserts the session.
func (r *SQLiteSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	cookies := session.Cookies
	if cookies == nil {
		cookies = []domain.Cookie{}
	}
	encoded, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("encode session cookies: %w", err)
	}

	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (server, cookies, user_id, username, timezone, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (server) DO UPDATE SET
			cookies = excluded.cookies,
			user_id = excluded.user_id,
			username = excluded.username,
			timezone = excluded.timezone,
			updated_at = excluded.updated_at`,
		session.Server, string(encoded), session.UserID, session.Username, session.Timezone,
		updatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session for server.
func (r *SQLiteSessionRepository) Delete(ctx context.Context, server string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE server = ?`, server)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
