package catalog

import (
	"context"
	"net/url"
	"strconv"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
)

type listResponse struct {
	Page         int       `json:"page"`
	Results      []rawItem `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

type rawItem struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        *string `json:"title"`
	Name         *string `json:"name"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
	ReleaseDate  *string `json:"release_date"`
	FirstAirDate *string `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

func (r rawItem) isMovieOrTV() bool {
	return r.MediaType == string(bracket.MediaMovie) || r.MediaType == string(bracket.MediaTV)
}

// mapRawItem converts a list result. forced wins over the result's own
// media_type, which list endpoints other than trending/all and search omit.
func mapRawItem(raw rawItem, forced bracket.MediaType) bracket.MediaItem {
	mediaType := forced
	if mediaType == "" {
		mediaType = bracket.MediaType(raw.MediaType)
	}
	if mediaType == "" {
		mediaType = bracket.MediaMovie
	}

	title, date := raw.Title, raw.ReleaseDate
	if mediaType == bracket.MediaTV {
		title, date = raw.Name, raw.FirstAirDate
	}

	item := bracket.MediaItem{
		ID:           raw.ID,
		MediaType:    mediaType,
		Title:        "Unknown",
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
		Overview:     raw.Overview,
		VoteAverage:  raw.VoteAverage,
		VoteCount:    raw.VoteCount,
		GenreIDs:     raw.GenreIDs,
		Genres:       GenreNames(raw.GenreIDs),
		Popularity:   raw.Popularity,
	}
	if title != nil && *title != "" {
		item.Title = *title
	}
	if date != nil {
		item.ReleaseDate = *date
	}
	if item.Overview == "" {
		item.Overview = "No synopsis available."
	}
	return item
}

func forcedType(filter tournament.ContentFilter) bracket.MediaType {
	if filter == tournament.FilterBoth {
		return ""
	}
	return bracket.MediaType(filter)
}

func truncate(items []bracket.MediaItem, count int) []bracket.MediaItem {
	if len(items) > count {
		return items[:count]
	}
	return items
}

// Trending pages through /trending/{movie|tv|all}/week until count items are
// collected or TMDB runs out of pages.
func (c *Client) Trending(ctx context.Context, filter tournament.ContentFilter, count int) ([]bracket.MediaItem, error) {
	mediaPath := string(filter)
	if filter == tournament.FilterBoth {
		mediaPath = "all"
	}

	items := make([]bracket.MediaItem, 0, count)
	for page := 1; len(items) < count; page++ {
		var data listResponse
		params := url.Values{"page": {strconv.Itoa(page)}}
		if err := c.get(ctx, "trending", "/trending/"+mediaPath+"/week", params, &data); err != nil {
			return nil, err
		}

		for _, raw := range data.Results {
			// trending/all also returns people
			if filter == tournament.FilterBoth && !raw.isMovieOrTV() {
				continue
			}
			items = append(items, mapRawItem(raw, forcedType(filter)))
		}

		if page >= data.TotalPages {
			break
		}
	}

	return truncate(items, count), nil
}

// ByGenre uses /discover per media type. For both, half the count comes from
// each type with movies first.
func (c *Client) ByGenre(ctx context.Context, filter tournament.ContentFilter, genreID int, count int) ([]bracket.MediaItem, error) {
	types := []bracket.MediaType{forcedType(filter)}
	perType := count
	if filter == tournament.FilterBoth {
		types = []bracket.MediaType{bracket.MediaMovie, bracket.MediaTV}
		perType = (count + 1) / 2
	}

	all := make([]bracket.MediaItem, 0, count)
	for _, mediaType := range types {
		items := make([]bracket.MediaItem, 0, perType)
		for page := 1; len(items) < perType; page++ {
			var data listResponse
			params := url.Values{
				"with_genres": {strconv.Itoa(genreID)},
				"sort_by":     {"popularity.desc"},
				"page":        {strconv.Itoa(page)},
			}
			if err := c.get(ctx, "discover", "/discover/"+string(mediaType), params, &data); err != nil {
				return nil, err
			}

			for _, raw := range data.Results {
				items = append(items, mapRawItem(raw, mediaType))
			}

			if page >= data.TotalPages {
				break
			}
		}
		all = append(all, truncate(items, perType)...)
	}

	return truncate(all, count), nil
}

// Search queries /search/multi and keeps results matching the filter.
func (c *Client) Search(ctx context.Context, query string, filter tournament.ContentFilter, count int) ([]bracket.MediaItem, error) {
	items := make([]bracket.MediaItem, 0, count)
	for page := 1; len(items) < count; page++ {
		var data listResponse
		params := url.Values{
			"query": {query},
			"page":  {strconv.Itoa(page)},
		}
		if err := c.get(ctx, "search", "/search/multi", params, &data); err != nil {
			return nil, err
		}

		for _, raw := range data.Results {
			if filter == tournament.FilterBoth {
				if !raw.isMovieOrTV() {
					continue
				}
			} else if raw.MediaType != string(filter) {
				continue
			}
			items = append(items, mapRawItem(raw, ""))
		}

		if page >= data.TotalPages {
			break
		}
	}

	return truncate(items, count), nil
}

type Query struct {
	Filter      tournament.ContentFilter
	GenreID     *int
	SearchQuery string
	Count       int
}

func QueryFor(cfg tournament.Config) Query {
	return Query{
		Filter:      cfg.ContentFilter,
		GenreID:     cfg.GenreID,
		SearchQuery: cfg.SearchQuery,
		Count:       cfg.BracketSize,
	}
}

// Items picks the listing for q: a search query beats a genre, and with
// neither the weekly trending list is used.
func (c *Client) Items(ctx context.Context, q Query) ([]bracket.MediaItem, error) {
	switch {
	case q.SearchQuery != "":
		return c.Search(ctx, q.SearchQuery, q.Filter, q.Count)
	case q.GenreID != nil:
		return c.ByGenre(ctx, q.Filter, *q.GenreID, q.Count)
	default:
		return c.Trending(ctx, q.Filter, q.Count)
	}
}
