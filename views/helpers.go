package views

import (
	"context"

	"github.com/AdamBeresnev/decide2watch/internal/middleware"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
)

// SetupConfig picks what the setup form shows. A failed start keeps the
// config that failed so it can be adjusted; otherwise the browser's saved
// preferences win over the server default.
func SetupConfig(ctx context.Context, state tournament.State) tournament.Config {
	if _, failed := state.Err(); failed {
		return state.Config()
	}
	if prefs, ok := middleware.GetPreferences(ctx); ok {
		cfg := prefs.Config()
		if cfg.ContentFilter.Valid() && tournament.ValidBracketSize(cfg.BracketSize) {
			return cfg
		}
	}
	return state.Config()
}
