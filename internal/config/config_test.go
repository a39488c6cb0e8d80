package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, Config{
		TMDBBaseURL:     DefaultTMDBBaseURL,
		TMDBRateLimit:   DefaultTMDBRateLimit,
		DatabasePath:    DefaultDatabasePath,
		Addr:            DefaultAddr,
		CacheTTL:        time.Hour,
		SessionLifetime: 24 * time.Hour,
	}, cfg)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envOf(map[string]string{
		"TMDB_API_KEY":     "secret",
		"TMDB_BASE_URL":    "http://localhost:9999",
		"DATABASE_PATH":    "/tmp/test.db",
		"ADDR":             ":9090",
		"REDIS_URL":        "redis://localhost:6379/0",
		"CACHE_TTL":        "15m",
		"TMDB_RATE_LIMIT":  "4.5",
		"SESSION_LIFETIME": "2h",
	}))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.TMDBAPIKey)
	assert.Equal(t, "http://localhost:9999", cfg.TMDBBaseURL)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4.5, cfg.TMDBRateLimit)
	assert.Equal(t, 2*time.Hour, cfg.SessionLifetime)
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"CACHE_TTL", "soon", "invalid CACHE_TTL"},
		{"CACHE_TTL", "-1m", "must be positive"},
		{"SESSION_LIFETIME", "forever", "invalid SESSION_LIFETIME"},
		{"TMDB_RATE_LIMIT", "fast", "invalid TMDB_RATE_LIMIT"},
		{"TMDB_RATE_LIMIT", "0", "must be a positive number"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := load(envOf(map[string]string{tt.key: tt.value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
