package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// .env.test.local is optional locally; CI supplies DB_PASSWORD directly.
	_ = godotenv.Load(".env.test.local")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed:
  base_url: "https://api.binance.com"
database:
  host: "db.internal"
  port: 3306
  user: "clengine"
  name: "clengine"
vault:
  base_url: "http://vault.internal"
  timeout_sec: 5
ingestion:
  symbol: "ETHUSDT"
  interval: "1m"
pipeline:
  max_retries: 5
  base_backoff_sec: 2
  batch_size: 25
  poll_interval_ms: 1000
indicator_set:
  ema_fast: 12
  ema_slow: 26
  atr_window: 14
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.binance.com", cfg.Feed.BaseURL)
	assert.Equal(t, "ETHUSDT", cfg.Ingestion.Symbol)
	assert.Equal(t, 5, cfg.MaxRetries())
	assert.Equal(t, 25, cfg.BatchSize())

	t.Setenv("DB_PASSWORD", "secret")
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "clengine:secret@tcp(db.internal:3306)/clengine")
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  base_url: x\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxRetries())
	assert.Equal(t, 50, cfg.BatchSize())
	assert.Equal(t, int64(5e9), cfg.PollInterval().Nanoseconds())
}
