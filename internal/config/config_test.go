package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "funnel.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
port: "9090"
http_timeout_seconds: 30
log_level: debug
max_upload_mb: 8
cors_origins:
  - https://dash.example.com
`), 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(p, &cfg))
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.CORSOrigins)
	// untouched keys keep defaults
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, 3, cfg.FetchRetries)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("port: [oops"), 0o644))
	assert.Error(t, LoadFile(p, &cfg))
}

func TestFromEnvOverridesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "funnel.yaml")
	require.NoError(t, os.WriteFile(p, []byte("port: \"9090\"\ncache_size: 10\n"), 0o644))

	t.Setenv("FUNNEL_CONFIG", p)
	t.Setenv("PORT", "7070")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("CACHE_SIZE", "")
	t.Setenv("FETCH_RETRIES", "1")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := FromEnv()
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10, cfg.CacheSize)
	assert.Equal(t, 1, cfg.FetchRetries)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
