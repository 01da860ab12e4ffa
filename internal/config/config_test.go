package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.goodreads.com", cfg.Goodreads.BaseURL)
	assert.Equal(t, "en", cfg.Anobii.Language)
	assert.Equal(t, 5*time.Second, cfg.Sync.Delay)
	assert.Equal(t, 2*time.Second, cfg.Sync.Jitter)
	assert.Equal(t, 2*time.Second, cfg.Sync.ShortDelay)
	assert.False(t, cfg.Sync.GuardEndDate)
}

func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `# Logging configuration
logging:
  level: "debug"
  format: "json"

# Goodreads configuration
goodreads:
  cookie_file: "./cookies.json"

# Anobii source configuration
anobii:
  language: "zh-tw"

# Sync settings
sync:
  cache_db: "./cache/updated.db"
  delay: "10s"
  limit: 25
  guard_end_date: true
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "./cookies.json", cfg.Goodreads.CookieFile)
	assert.Equal(t, "zh-tw", cfg.Anobii.Language)
	assert.Equal(t, "./cache/updated.db", cfg.Sync.CacheDB)
	assert.Equal(t, 10*time.Second, cfg.Sync.Delay)
	assert.Equal(t, 25, cfg.Sync.Limit)
	assert.True(t, cfg.Sync.GuardEndDate)

	// Values absent from the file keep their defaults.
	assert.Equal(t, "https://www.goodreads.com", cfg.Goodreads.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Sync.Jitter)
}

func TestEnvOverridesFile(t *testing.T) {
	yamlContent := `goodreads:
  cookie_file: "./from-file.json"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	t.Setenv("GOODREADS_COOKIE_FILE", "./from-env.json")
	t.Setenv("GOODREADS_BASE_URL", "https://goodreads.example.com/")
	t.Setenv("SYNC_DELAY", "3s")
	t.Setenv("SYNC_RETRY_ERRORED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./from-env.json", cfg.Goodreads.CookieFile)
	assert.Equal(t, "https://goodreads.example.com", cfg.Goodreads.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Sync.Delay)
	assert.True(t, cfg.Sync.RetryErrored)
}

func TestValidateRemote(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.ValidateRemote()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Field, "GOODREADS_COOKIE_FILE")

	cfg.Goodreads.CookieFile = "./cookies.json"
	assert.NoError(t, cfg.ValidateRemote())
}

func TestLoadMissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Anobii.Language)
}
