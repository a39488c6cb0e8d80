package catalog

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"slices"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	castLimit        = 5
	enrichBatchSize  = 5
	preferredRegion  = "US"
	youtubeWatchBase = "https://www.youtube.com/watch?v="
)

type rawProvider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type rawRegionProviders struct {
	Flatrate []rawProvider `json:"flatrate"`
	Free     []rawProvider `json:"free"`
	Rent     []rawProvider `json:"rent"`
	Buy      []rawProvider `json:"buy"`
}

type detailResponse struct {
	Runtime          *int    `json:"runtime"`
	NumberOfSeasons  *int    `json:"number_of_seasons"`
	NumberOfEpisodes *int    `json:"number_of_episodes"`
	Tagline          *string `json:"tagline"`
	Credits          *struct {
		Cast []struct {
			ID          int     `json:"id"`
			Name        string  `json:"name"`
			Character   string  `json:"character"`
			ProfilePath *string `json:"profile_path"`
		} `json:"cast"`
	} `json:"credits"`
	WatchProviders *struct {
		Results map[string]rawRegionProviders `json:"results"`
	} `json:"watch/providers"`
	Videos *struct {
		Results []struct {
			Key  string `json:"key"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"results"`
	} `json:"videos"`
}

// Enrich fetches the detail record for item and returns a copy carrying
// runtime, cast, providers and trailer.
func (c *Client) Enrich(ctx context.Context, item bracket.MediaItem) (bracket.MediaItem, error) {
	path := fmt.Sprintf("/movie/%d", item.ID)
	if item.MediaType == bracket.MediaTV {
		path = fmt.Sprintf("/tv/%d", item.ID)
	}

	var data detailResponse
	params := url.Values{"append_to_response": {"credits,watch/providers,videos"}}
	if err := c.get(ctx, "details", path, params, &data); err != nil {
		return item, fmt.Errorf("failed to enrich %q: %w", item.Title, err)
	}

	enriched := item
	enriched.Runtime = utils.NonZeroOrNil(data.Runtime)
	enriched.NumberOfSeasons = data.NumberOfSeasons
	enriched.NumberOfEpisodes = data.NumberOfEpisodes
	enriched.Tagline = utils.StringOrNil(utils.OrZero(data.Tagline))
	enriched.Cast = castFrom(data)
	enriched.WatchProviders = providersFrom(data)
	enriched.Trailer = trailerFrom(data)
	return enriched, nil
}

func castFrom(data detailResponse) []bracket.CastMember {
	if data.Credits == nil {
		return []bracket.CastMember{}
	}
	cast := make([]bracket.CastMember, 0, castLimit)
	for _, c := range data.Credits.Cast {
		if len(cast) == castLimit {
			break
		}
		cast = append(cast, bracket.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}
	return cast
}

// providersFrom prefers the US listing and otherwise falls back to the
// alphabetically first region so the choice is stable.
func providersFrom(data detailResponse) []bracket.WatchProvider {
	providers := []bracket.WatchProvider{}
	if data.WatchProviders == nil || len(data.WatchProviders.Results) == 0 {
		return providers
	}

	results := data.WatchProviders.Results
	region, ok := results[preferredRegion]
	if !ok {
		keys := make([]string, 0, len(results))
		for k := range results {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		region = results[keys[0]]
	}

	seen := make(map[int]bool)
	groups := []struct {
		list []rawProvider
		kind bracket.ProviderType
	}{
		{region.Flatrate, bracket.ProviderFlatrate},
		{region.Free, bracket.ProviderFree},
		{region.Rent, bracket.ProviderRent},
		{region.Buy, bracket.ProviderBuy},
	}
	for _, g := range groups {
		for _, p := range g.list {
			if seen[p.ProviderID] {
				continue
			}
			seen[p.ProviderID] = true
			providers = append(providers, bracket.WatchProvider{
				ProviderID:   p.ProviderID,
				ProviderName: p.ProviderName,
				LogoPath:     p.LogoPath,
				Type:         g.kind,
			})
		}
	}
	return providers
}

func trailerFrom(data detailResponse) *string {
	if data.Videos == nil {
		return nil
	}
	for _, v := range data.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			return utils.Ptr(youtubeWatchBase + v.Key)
		}
	}
	return nil
}

// EnrichAll enriches items in batches of five, keeping order. onProgress,
// when set, gets the rounded completion percentage after each batch.
func (c *Client) EnrichAll(ctx context.Context, items []bracket.MediaItem, onProgress func(percent int)) ([]bracket.MediaItem, error) {
	enriched := make([]bracket.MediaItem, len(items))

	for start := 0; start < len(items); start += enrichBatchSize {
		end := min(start+enrichBatchSize, len(items))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				item, err := c.Enrich(gctx, items[i])
				if err != nil {
					return err
				}
				enriched[i] = item
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if onProgress != nil {
			onProgress(int(math.Round(float64(end) / float64(len(items)) * 100)))
		}
	}

	return enriched, nil
}
