package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "quiz")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "quizflow")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "jwt")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "quizflow", cfg.Name)
	assert.Equal(t, 24*time.Hour, cfg.Runtime.SessionTTL)
	assert.Equal(t, int64(1<<20), cfg.Runtime.MaxQuizBytes)
	assert.Equal(t, 5*time.Minute, cfg.Stats.SnapshotInterval)
	assert.Empty(t, cfg.Security.AuthorEmail)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "host=db port=5432 user=quiz password=secret dbname=quizflow sslmode=disable", cfg.Postgres.DSN())
	assert.Equal(t, cfg.Postgres.DSN()+" pool_max_conns=10", cfg.Postgres.ConnString())
}

func TestLoadRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}
