package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type fakeTMDB struct {
	url      string
	requests atomic.Int32
	mux      *http.ServeMux
}

func newFakeTMDB(t *testing.T) (*fakeTMDB, *Client) {
	t.Helper()
	f := &fakeTMDB{mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	f.url = srv.URL

	client := NewClient(Options{
		APIKey:            testAPIKey,
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
	})
	return f, client
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// listPage builds a paged list response with ids starting at first.
func listPage(page, totalPages, first, n int, mediaType string) map[string]any {
	results := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		id := first + i
		r := map[string]any{
			"id":           id,
			"overview":     "",
			"genre_ids":    []int{28, 18, 999999},
			"vote_average": 7.5,
			"poster_path":  fmt.Sprintf("/p%d.jpg", id),
		}
		if mediaType != "" {
			r["media_type"] = mediaType
		}
		if mediaType == "tv" {
			r["name"] = fmt.Sprintf("Show %d", id)
			r["first_air_date"] = "2019-05-01"
		} else {
			r["title"] = fmt.Sprintf("Film %d", id)
			r["release_date"] = "2021-03-04"
		}
		results = append(results, r)
	}
	return map[string]any{
		"page":          page,
		"results":       results,
		"total_pages":   totalPages,
		"total_results": totalPages * n,
	}
}

func pageParam(r *http.Request) int {
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return p
}

func TestTrendingPaginates(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		page := pageParam(r)
		writeJSON(w, listPage(page, 3, (page-1)*10+1, 10, ""))
	})

	items, err := client.Trending(context.Background(), tournament.FilterMovie, 16)
	require.NoError(t, err)
	require.Len(t, items, 16)
	assert.EqualValues(t, 2, f.requests.Load(), "stops once enough items are collected")

	first := items[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, bracket.MediaMovie, first.MediaType)
	assert.Equal(t, "Film 1", first.Title)
	assert.Equal(t, "2021-03-04", first.ReleaseDate)
	assert.Equal(t, "No synopsis available.", first.Overview)
	assert.Equal(t, []string{"Action", "Drama"}, first.Genres)
	assert.Equal(t, 16, items[15].ID)
}

func TestTrendingStopsAtLastPage(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/trending/tv/week", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listPage(pageParam(r), 1, 1, 5, ""))
	})

	items, err := client.Trending(context.Background(), tournament.FilterTV, 8)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, bracket.MediaTV, items[0].MediaType)
	assert.Equal(t, "Show 1", items[0].Title)
	assert.Equal(t, "2019-05-01", items[0].ReleaseDate)
}

func TestTrendingBothSkipsPeople(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/trending/all/week", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"page":        1,
			"total_pages": 1,
			"results": []map[string]any{
				{"id": 1, "media_type": "movie", "title": "Heat"},
				{"id": 2, "media_type": "person", "name": "Al Pacino"},
				{"id": 3, "media_type": "tv", "name": "The Wire"},
			},
		})
	})

	items, err := client.Trending(context.Background(), tournament.FilterBoth, 8)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Heat", items[0].Title)
	assert.Equal(t, bracket.MediaTV, items[1].MediaType)
	assert.Equal(t, "The Wire", items[1].Title)
}

func TestByGenreBothInterleavesTypes(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "27", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		writeJSON(w, listPage(pageParam(r), 5, 100, 20, ""))
	})
	f.mux.HandleFunc("/discover/tv", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listPage(pageParam(r), 5, 200, 20, "tv"))
	})

	items, err := client.ByGenre(context.Background(), tournament.FilterBoth, 27, 8)
	require.NoError(t, err)
	require.Len(t, items, 8)
	for i := 0; i < 4; i++ {
		assert.Equal(t, bracket.MediaMovie, items[i].MediaType)
		assert.Equal(t, bracket.MediaTV, items[i+4].MediaType)
	}
	assert.Equal(t, "Show 200", items[4].Title)
}

func TestSearchFiltersMediaType(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/search/multi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "star", r.URL.Query().Get("query"))
		writeJSON(w, map[string]any{
			"page":        1,
			"total_pages": 1,
			"results": []map[string]any{
				{"id": 11, "media_type": "movie", "title": "Star Wars"},
				{"id": 12, "media_type": "tv", "name": "Star Trek"},
				{"id": 13, "media_type": "person", "name": "A Star"},
			},
		})
	})

	items, err := client.Search(context.Background(), "star", tournament.FilterTV, 8)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Star Trek", items[0].Title)
}

func TestItemsDispatch(t *testing.T) {
	f, client := newFakeTMDB(t)
	var hits sync.Map
	f.mux.HandleFunc("/search/multi", func(w http.ResponseWriter, r *http.Request) {
		hits.Store("search", true)
		writeJSON(w, listPage(1, 1, 1, 8, "movie"))
	})
	f.mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		hits.Store("discover", true)
		writeJSON(w, listPage(1, 1, 1, 8, ""))
	})
	f.mux.HandleFunc("/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		hits.Store("trending", true)
		writeJSON(w, listPage(1, 1, 1, 8, ""))
	})

	ctx := context.Background()
	_, err := client.Items(ctx, Query{Filter: tournament.FilterMovie, GenreID: utils.Ptr(28), SearchQuery: "heat", Count: 8})
	require.NoError(t, err)
	_, searched := hits.Load("search")
	_, discovered := hits.Load("discover")
	assert.True(t, searched)
	assert.False(t, discovered, "search query takes priority over genre")

	_, err = client.Items(ctx, Query{Filter: tournament.FilterMovie, GenreID: utils.Ptr(28), Count: 8})
	require.NoError(t, err)
	_, discovered = hits.Load("discover")
	assert.True(t, discovered)

	_, err = client.Items(ctx, QueryFor(tournament.DefaultConfig()))
	require.NoError(t, err)
	_, trended := hits.Load("trending")
	assert.True(t, trended)
}

func TestAPIErrors(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := client.Trending(context.Background(), tournament.FilterMovie, 8)
	require.Error(t, err)
	assert.Equal(t, "TMDB API error: 401 Unauthorized", err.Error())
}

func TestMissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "your_api_key_here"} {
		client := NewClient(Options{APIKey: key})
		assert.False(t, client.APIKeySet())
		_, err := client.Trending(context.Background(), tournament.FilterMovie, 8)
		assert.ErrorIs(t, err, ErrAPIKeyMissing)
	}
}

func detailHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "credits,watch/providers,videos", r.URL.Query().Get("append_to_response"))
		cast := make([]map[string]any, 0, 7)
		for i := 1; i <= 7; i++ {
			cast = append(cast, map[string]any{"id": i, "name": fmt.Sprintf("Actor %d", i), "character": "Someone"})
		}
		writeJSON(w, map[string]any{
			"runtime": 170,
			"tagline": "",
			"credits": map[string]any{"cast": cast},
			"watch/providers": map[string]any{
				"results": map[string]any{
					"GB": map[string]any{"flatrate": []map[string]any{{"provider_id": 99, "provider_name": "GB Only"}}},
					"US": map[string]any{
						"rent":     []map[string]any{{"provider_id": 2, "provider_name": "Apple TV"}},
						"flatrate": []map[string]any{{"provider_id": 8, "provider_name": "Netflix"}},
						"buy":      []map[string]any{{"provider_id": 2, "provider_name": "Apple TV"}},
					},
				},
			},
			"videos": map[string]any{
				"results": []map[string]any{
					{"key": "teaser1", "site": "YouTube", "type": "Teaser"},
					{"key": "abc123", "site": "YouTube", "type": "Trailer"},
				},
			},
		})
	}
}

func TestEnrich(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/movie/949", detailHandler(t))

	item := bracket.MediaItem{ID: 949, MediaType: bracket.MediaMovie, Title: "Heat"}
	enriched, err := client.Enrich(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, "Heat", enriched.Title)
	require.NotNil(t, enriched.Runtime)
	assert.Equal(t, 170, *enriched.Runtime)
	assert.Nil(t, enriched.Tagline, "empty tagline becomes nil")
	assert.Len(t, enriched.Cast, 5)
	assert.Equal(t, "Actor 1", enriched.Cast[0].Name)

	require.Len(t, enriched.WatchProviders, 2)
	assert.Equal(t, "Netflix", enriched.WatchProviders[0].ProviderName)
	assert.Equal(t, bracket.ProviderFlatrate, enriched.WatchProviders[0].Type)
	assert.Equal(t, bracket.ProviderRent, enriched.WatchProviders[1].Type, "buy duplicate dropped")

	require.NotNil(t, enriched.Trailer)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", *enriched.Trailer)
	assert.Empty(t, item.Cast, "input item is left alone")
}

func TestEnrichFallsBackToFirstRegion(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/tv/1399", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"number_of_seasons":  8,
			"number_of_episodes": 73,
			"tagline":            "Winter is coming.",
			"watch/providers": map[string]any{
				"results": map[string]any{
					"GB": map[string]any{"free": []map[string]any{{"provider_id": 3, "provider_name": "GB Free"}}},
					"DE": map[string]any{"buy": []map[string]any{{"provider_id": 4, "provider_name": "DE Store"}}},
				},
			},
		})
	})

	enriched, err := client.Enrich(context.Background(), bracket.MediaItem{ID: 1399, MediaType: bracket.MediaTV})
	require.NoError(t, err)
	assert.Equal(t, 8, *enriched.NumberOfSeasons)
	assert.Equal(t, 73, *enriched.NumberOfEpisodes)
	assert.Equal(t, "Winter is coming.", *enriched.Tagline)
	assert.Nil(t, enriched.Runtime)
	assert.Empty(t, enriched.Cast)
	assert.Nil(t, enriched.Trailer)
	require.Len(t, enriched.WatchProviders, 1)
	assert.Equal(t, "DE Store", enriched.WatchProviders[0].ProviderName)
}

func TestEnrichAll(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/movie/")
		writeJSON(w, map[string]any{"tagline": "tagline " + id})
	})

	items := make([]bracket.MediaItem, 12)
	for i := range items {
		items[i] = bracket.MediaItem{ID: i + 1, MediaType: bracket.MediaMovie}
	}

	var progress []int
	enriched, err := client.EnrichAll(context.Background(), items, func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	require.Len(t, enriched, 12)
	for i, item := range enriched {
		assert.Equal(t, i+1, item.ID)
		assert.Equal(t, fmt.Sprintf("tagline %d", i+1), *item.Tagline)
	}
	assert.Equal(t, []int{42, 83, 100}, progress)
}

func TestEnrichAllStopsOnError(t *testing.T) {
	f, client := newFakeTMDB(t)
	f.mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/3" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{})
	})

	items := make([]bracket.MediaItem, 8)
	for i := range items {
		items[i] = bracket.MediaItem{ID: i + 1, MediaType: bracket.MediaMovie, Title: fmt.Sprintf("Film %d", i+1)}
	}

	_, err := client.EnrichAll(context.Background(), items, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB API error: 404 Not Found")
	assert.Contains(t, err.Error(), `"Film 3"`)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveCatalogRequest(endpoint, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[endpoint+":"+status]++
}

func TestCachedResponses(t *testing.T) {
	f, _ := newFakeTMDB(t)
	f.mux.HandleFunc("/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listPage(1, 1, 1, 8, ""))
	})

	cache := &memoryCache{data: make(map[string][]byte)}
	observer := &countingObserver{counts: make(map[string]int)}
	client := NewClient(Options{
		APIKey:            testAPIKey,
		BaseURL:           f.url,
		RequestsPerSecond: 1000,
		Cache:             cache,
		Observer:          observer,
	})

	first, err := client.Trending(context.Background(), tournament.FilterMovie, 8)
	require.NoError(t, err)
	second, err := client.Trending(context.Background(), tournament.FilterMovie, 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, f.requests.Load(), "second call is served from cache")
	assert.Equal(t, 1, observer.counts["trending:200"])
	assert.Equal(t, 1, observer.counts["cache:hit"])

	for key := range cache.data {
		assert.NotContains(t, key, testAPIKey)
		assert.True(t, strings.HasPrefix(key, "tmdb:/trending/movie/week?"))
	}
}
