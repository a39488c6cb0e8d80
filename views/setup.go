package views

import "github.com/AdamBeresnev/decide2watch/internal/tournament"

type SetupData struct {
	Config    tournament.Config
	Error     string
	APIKeySet bool
}

var filterOptions = []tournament.ContentFilter{tournament.FilterMovie, tournament.FilterTV, tournament.FilterBoth}

func genreSelected(cfg tournament.Config, id int) bool {
	return cfg.GenreID != nil && *cfg.GenreID == id
}

func clampPercent(percent int) int {
	return min(max(percent, 0), 100)
}
