package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 6*time.Hour, cfg.SeatTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "spellclash_actions", cfg.Redis.Queue)
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "postgres://postgres:pw@db:5432/spellclash", cfg.Postgres.URL())
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadServerRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	_, err := LoadServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadHistorianBatchSize(t *testing.T) {
	t.Setenv("HISTORIAN_BATCH_SIZE", "0")
	_, err := LoadHistorian()
	require.Error(t, err)

	t.Setenv("HISTORIAN_BATCH_SIZE", "50")
	cfg, err := LoadHistorian()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay)
}
