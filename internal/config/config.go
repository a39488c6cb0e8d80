package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultTMDBBaseURL     = "https://api.themoviedb.org/3"
	DefaultDatabasePath    = "decide2watch.db"
	DefaultAddr            = ":8080"
	DefaultCacheTTL        = time.Hour
	DefaultTMDBRateLimit   = 20.0
	DefaultSessionLifetime = 24 * time.Hour
)

type Config struct {
	TMDBAPIKey      string
	TMDBBaseURL     string
	TMDBRateLimit   float64
	DatabasePath    string
	Addr            string
	RedisURL        string
	CacheTTL        time.Duration
	SessionLifetime time.Duration
}

// Load reads the process environment. Unset keys take their defaults; a set
// but malformed value is an error.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		TMDBAPIKey:   getenv("TMDB_API_KEY"),
		TMDBBaseURL:  orDefault(getenv("TMDB_BASE_URL"), DefaultTMDBBaseURL),
		DatabasePath: orDefault(getenv("DATABASE_PATH"), DefaultDatabasePath),
		Addr:         orDefault(getenv("ADDR"), DefaultAddr),
		RedisURL:     getenv("REDIS_URL"),
	}

	var err error
	if cfg.CacheTTL, err = duration(getenv, "CACHE_TTL", DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionLifetime, err = duration(getenv, "SESSION_LIFETIME", DefaultSessionLifetime); err != nil {
		return Config{}, err
	}

	cfg.TMDBRateLimit = DefaultTMDBRateLimit
	if raw := getenv("TMDB_RATE_LIMIT"); raw != "" {
		cfg.TMDBRateLimit, err = strconv.ParseFloat(raw, 64)
		if err != nil || cfg.TMDBRateLimit <= 0 {
			return Config{}, fmt.Errorf("invalid TMDB_RATE_LIMIT %q: must be a positive number", raw)
		}
	}

	return cfg, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func duration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}
