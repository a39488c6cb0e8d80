package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/httputil"
	"github.com/AdamBeresnev/decide2watch/internal/metrics"
	"github.com/AdamBeresnev/decide2watch/internal/middleware"
	"github.com/AdamBeresnev/decide2watch/internal/service"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/AdamBeresnev/decide2watch/static"
	"github.com/AdamBeresnev/decide2watch/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const historyLimit = 20

type pinger interface {
	PingContext(ctx context.Context) error
}

type app struct {
	tournaments *service.TournamentService
	apiKeySet   bool
	sessions    *scs.SessionManager
	metrics     *metrics.Metrics
	db          pinger
	// loadCtx outlives the request so a load started by POST /start keeps
	// running after the redirect
	loadCtx context.Context
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static.FS)))
	r.Get("/healthz", a.healthz)
	r.Handle("/metrics", a.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(a.sessions.LoadAndSave)
		r.Use(middleware.LoadPreferences(a.sessions))

		r.Get("/", a.index)
		r.Post("/config", a.saveConfig)
		r.Post("/start", a.start)
		r.Post("/pick", a.pick)
		r.Post("/reset", a.reset)
		r.Get("/history", a.history)
	})

	return r
}

func (a *app) index(w http.ResponseWriter, r *http.Request) {
	state := a.tournaments.State()

	switch state.Screen() {
	case tournament.ScreenLoading:
		views.Render(w, r, views.LoadingPage(a.tournaments.LoadProgress()))

	case tournament.ScreenInProgress:
		data, ok := views.NewMatchupData(state)
		if !ok {
			httputil.InternalServerError(w, "Tournament has no pending matchup", nil)
			return
		}
		views.Render(w, r, views.MatchupPage(data))

	case tournament.ScreenComplete:
		champion, ok := state.Champion()
		if !ok {
			httputil.InternalServerError(w, "Finished tournament has no champion", nil)
			return
		}
		views.Render(w, r, views.WinnerPage(champion, views.PrepareBracketData(state.Rounds())))

	default:
		views.Render(w, r, views.SetupPage(views.SetupData{
			Config:    views.SetupConfig(r.Context(), state),
			Error:     state.ErrMessage(),
			APIKeySet: a.apiKeySet,
		}))
	}
}

// parseConfigForm reads the setup form into a config update. Fields missing
// from the form keep their current value and an empty genre clears it.
// Validation of filter and size is left to the reducer so the error shows on
// the setup screen.
func parseConfigForm(r *http.Request) (tournament.SetConfig, error) {
	var update tournament.SetConfig
	if err := r.ParseForm(); err != nil {
		return update, err
	}

	if r.Form.Has("filter") {
		filter := tournament.ContentFilter(r.Form.Get("filter"))
		update.ContentFilter = &filter
	}
	if sizeStr := r.Form.Get("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return update, err
		}
		update.BracketSize = &size
	}
	if r.Form.Has("genre") {
		update.GenreID = utils.IntOrNil(r.Form.Get("genre"))
		update.ClearGenre = update.GenreID == nil
	}
	if r.Form.Has("query") {
		query := r.Form.Get("query")
		update.SearchQuery = &query
	}
	return update, nil
}

// applyConfig configures the tournament from the posted form and remembers it
// for this browser. It reports false once it has written an error response.
func (a *app) applyConfig(w http.ResponseWriter, r *http.Request) bool {
	update, err := parseConfigForm(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return false
	}

	state := a.tournaments.Configure(update)
	if _, failed := state.Err(); !failed {
		middleware.SavePreferences(r.Context(), a.sessions, middleware.PreferencesFromConfig(state.Config()))
	}
	return true
}

func (a *app) saveConfig(w http.ResponseWriter, r *http.Request) {
	if a.tournaments.State().Screen() != tournament.ScreenConfiguring {
		httputil.Redirect(w, r, "/")
		return
	}
	if !a.applyConfig(w, r) {
		return
	}
	httputil.Redirect(w, r, "/")
}

func (a *app) start(w http.ResponseWriter, r *http.Request) {
	// a running tournament has to be reset first
	switch a.tournaments.State().Screen() {
	case tournament.ScreenLoading, tournament.ScreenInProgress:
		httputil.Redirect(w, r, "/")
		return
	case tournament.ScreenComplete:
		// starting over from the winner screen
		a.tournaments.Reset()
	}
	if !a.applyConfig(w, r) {
		return
	}
	if _, failed := a.tournaments.State().Err(); failed {
		httputil.Redirect(w, r, "/")
		return
	}

	token, err := a.tournaments.Begin()
	if err != nil {
		if errors.Is(err, service.ErrAlreadyLoading) {
			httputil.Redirect(w, r, "/")
			return
		}
		httputil.InternalServerError(w, "Failed to start tournament", err)
		return
	}

	go a.tournaments.Load(a.loadCtx, token)

	httputil.Redirect(w, r, "/")
}

func (a *app) pick(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	side, ok := bracket.ParseSide(r.Form.Get("side"))
	if !ok {
		httputil.BadRequest(w, "Invalid side, expected a or b", nil)
		return
	}
	if a.tournaments.State().Screen() != tournament.ScreenInProgress {
		httputil.Redirect(w, r, "/")
		return
	}

	a.tournaments.Pick(r.Context(), side)
	httputil.Redirect(w, r, "/")
}

func (a *app) reset(w http.ResponseWriter, r *http.Request) {
	a.tournaments.Reset()
	httputil.Redirect(w, r, "/")
}

func (a *app) history(w http.ResponseWriter, r *http.Request) {
	recent, err := a.tournaments.RecentChampions(r.Context(), historyLimit)
	if err != nil {
		httputil.InternalServerError(w, "Failed to get past champions", err)
		return
	}
	crowned, err := a.tournaments.MostCrowned(r.Context(), 5)
	if err != nil {
		httputil.InternalServerError(w, "Failed to get most crowned titles", err)
		return
	}
	views.Render(w, r, views.HistoryPage(recent, crowned))
}

func (a *app) healthz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			httputil.ServiceUnavailable(w, "database unavailable", err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
