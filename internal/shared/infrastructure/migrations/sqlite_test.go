package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSQLite_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "huddle.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunSQLite(ctx, db))
	require.NoError(t, RunSQLite(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 0, count)
}
