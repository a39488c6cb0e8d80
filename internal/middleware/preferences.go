package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/decide2watch/internal/tournament"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const PreferencesKey ContextKey = "preferences"

const (
	filterSessionKey = "pref.filter"
	sizeSessionKey   = "pref.size"
	genreSessionKey  = "pref.genre"
	querySessionKey  = "pref.query"
)

// Preferences is the last setup form a browser submitted.
type Preferences struct {
	ContentFilter tournament.ContentFilter
	BracketSize   int
	GenreID       *int
	SearchQuery   string
}

func PreferencesFromConfig(cfg tournament.Config) Preferences {
	return Preferences{
		ContentFilter: cfg.ContentFilter,
		BracketSize:   cfg.BracketSize,
		GenreID:       cfg.GenreID,
		SearchQuery:   cfg.SearchQuery,
	}
}

func (p Preferences) Config() tournament.Config {
	return tournament.Config{
		ContentFilter: p.ContentFilter,
		BracketSize:   p.BracketSize,
		GenreID:       p.GenreID,
		SearchQuery:   p.SearchQuery,
	}
}

// LoadPreferences copies any saved setup form from the session into the
// request context. It must run inside sessionManager.LoadAndSave.
func LoadPreferences(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !sessionManager.Exists(ctx, filterSessionKey) {
				next.ServeHTTP(w, r)
				return
			}

			prefs := Preferences{
				ContentFilter: tournament.ContentFilter(sessionManager.GetString(ctx, filterSessionKey)),
				BracketSize:   sessionManager.GetInt(ctx, sizeSessionKey),
				SearchQuery:   sessionManager.GetString(ctx, querySessionKey),
			}
			if sessionManager.Exists(ctx, genreSessionKey) {
				prefs.GenreID = utils.Ptr(sessionManager.GetInt(ctx, genreSessionKey))
			}

			ctx = context.WithValue(ctx, PreferencesKey, prefs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SavePreferences(ctx context.Context, sessionManager *scs.SessionManager, prefs Preferences) {
	sessionManager.Put(ctx, filterSessionKey, string(prefs.ContentFilter))
	sessionManager.Put(ctx, sizeSessionKey, prefs.BracketSize)
	sessionManager.Put(ctx, querySessionKey, prefs.SearchQuery)
	if prefs.GenreID != nil {
		sessionManager.Put(ctx, genreSessionKey, *prefs.GenreID)
	} else {
		sessionManager.Remove(ctx, genreSessionKey)
	}
}

func GetPreferences(ctx context.Context) (Preferences, bool) {
	val := ctx.Value(PreferencesKey)
	if val == nil {
		return Preferences{}, false
	}

	prefs, ok := val.(Preferences)
	return prefs, ok
}
