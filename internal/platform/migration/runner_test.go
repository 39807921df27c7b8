package migration

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgx5DSN(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/scholaris", pgx5DSN("postgres://u:p@db:5432/scholaris"))
	assert.Equal(t, "pgx5://db/scholaris", pgx5DSN("postgresql://db/scholaris"))
	assert.Equal(t, "pgx5://db/x", pgx5DSN("pgx5://db/x"))
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first)

	r, _, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	sql := string(body)
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS audit_logs"))
	for _, column := range []string{"actor_id", "role", "action", "path", "route", "module", "meta", "occurred_at"} {
		assert.Contains(t, sql, column)
	}
}
