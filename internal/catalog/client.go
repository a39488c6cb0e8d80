// Package catalog fetches contenders from The Movie Database (TMDB) v3 API
// and enriches them with cast, streaming providers and trailers.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.themoviedb.org/3"
	placeholderAPIKey  = "your_api_key_here"
	defaultRateLimit   = 20
	defaultHTTPTimeout = 10 * time.Second
)

var (
	ErrAPIKeyMissing  = errors.New("TMDB API key is not configured")
	ErrNotEnoughItems = errors.New("not enough titles for the bracket")
)

// APIError is returned for any non-2xx TMDB response.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error: %d %s", e.StatusCode, e.Status)
}

// NotEnoughItemsError reports a listing shorter than the bracket. It matches
// ErrNotEnoughItems under errors.Is.
type NotEnoughItemsError struct {
	Found int
	Need  int
}

func (e *NotEnoughItemsError) Error() string {
	return fmt.Sprintf("Only found %d titles, need %d. Try a different genre or search.", e.Found, e.Need)
}

func (e *NotEnoughItemsError) Unwrap() error {
	return ErrNotEnoughItems
}

// Cache stores raw response bodies. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RequestObserver interface {
	ObserveCatalogRequest(endpoint string, status string)
}

type Options struct {
	APIKey            string
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Cache             Cache
	CacheTTL          time.Duration
	Observer          RequestObserver
	Logger            *slog.Logger
}

type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	observer RequestObserver
	logger   *slog.Logger
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRateLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		apiKey:   opts.APIKey,
		baseURL:  opts.BaseURL,
		http:     opts.HTTPClient,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
}

// APIKeySet reports whether a real key was configured.
func (c *Client) APIKeySet() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if !c.APIKeySet() {
		return ErrAPIKeyMissing
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid TMDB url for %s: %w", path, err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("language", "en-US")

	// The key is added after computing the cache key so it never lands in redis
	cacheKey := "tmdb:" + path + "?" + q.Encode()
	if body, ok := c.cached(ctx, cacheKey); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
	}

	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for TMDB rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "error")
		return fmt.Errorf("TMDB request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.observe(endpoint, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read TMDB response for %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode TMDB response for %s: %w", path, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache TMDB response", "key", cacheKey, "error", err)
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("TMDB cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if ok {
		c.observe("cache", "hit")
	}
	return body, ok
}

func (c *Client) observe(endpoint, status string) {
	if c.observer != nil {
		c.observer.ObserveCatalogRequest(endpoint, status)
	}
}
