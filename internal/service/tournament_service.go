package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/catalog"
	"github.com/AdamBeresnev/decide2watch/internal/store"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
)

var (
	ErrAlreadyLoading = errors.New("a tournament is already loading")
	// ErrSuperseded is returned by a load that was overtaken by Reset or a
	// newer Start before it finished.
	ErrSuperseded = errors.New("tournament load was superseded")
)

type ItemSource interface {
	APIKeySet() bool
	Items(ctx context.Context, q catalog.Query) ([]bracket.MediaItem, error)
}

type Enricher interface {
	EnrichAll(ctx context.Context, items []bracket.MediaItem, onProgress func(percent int)) ([]bracket.MediaItem, error)
}

type ResultStore interface {
	SaveResult(ctx context.Context, result *bracket.Result) error
	ListRecent(ctx context.Context, limit int) ([]bracket.Result, error)
	MostCrowned(ctx context.Context, limit int) ([]store.CrownCount, error)
}

type Recorder interface {
	TournamentStarted(filter string)
	TournamentCompleted()
	TournamentFailed()
	Pick()
}

type noopRecorder struct{}

func (noopRecorder) TournamentStarted(string) {}
func (noopRecorder) TournamentCompleted()     {}
func (noopRecorder) TournamentFailed()        {}
func (noopRecorder) Pick()                    {}

type Options struct {
	Source   ItemSource
	Enricher Enricher
	Results  ResultStore
	Recorder Recorder
	Logger   *slog.Logger
	// Shuffle reorders the fetched items before pairing. Defaults to
	// bracket.Shuffle.
	Shuffle func([]bracket.MediaItem) []bracket.MediaItem
}

type TournamentService struct {
	controller *tournament.Controller
	source     ItemSource
	enricher   Enricher
	results    ResultStore
	recorder   Recorder
	logger     *slog.Logger
	shuffle    func([]bracket.MediaItem) []bracket.MediaItem

	// loadMu orders Start and Reset against the load generation
	loadMu     sync.Mutex
	generation uint64
	progress   atomic.Int32
}

func NewTournamentService(opts Options) *TournamentService {
	s := &TournamentService{
		source:   opts.Source,
		enricher: opts.Enricher,
		results:  opts.Results,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		shuffle:  opts.Shuffle,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.shuffle == nil {
		s.shuffle = bracket.Shuffle[bracket.MediaItem]
	}
	s.controller = tournament.NewController(s.logger)
	return s
}

func (s *TournamentService) State() tournament.State {
	return s.controller.State()
}

// LoadProgress is the enrichment percentage of the load in flight.
func (s *TournamentService) LoadProgress() int {
	return int(s.progress.Load())
}

// Configure merges update into the config. It is ignored once a tournament
// is loading, running or complete.
func (s *TournamentService) Configure(update tournament.SetConfig) tournament.State {
	return s.controller.Dispatch(update)
}

// Begin moves the tournament into loading and returns the token Load needs.
func (s *TournamentService) Begin() (uint64, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.controller.State().Screen() == tournament.ScreenLoading {
		return 0, ErrAlreadyLoading
	}
	s.generation++
	s.progress.Store(0)

	state := s.controller.Dispatch(tournament.BeginLoad{})
	s.recorder.TournamentStarted(string(state.Config().ContentFilter))
	return s.generation, nil
}

// Start runs Begin and Load back to back.
func (s *TournamentService) Start(ctx context.Context) error {
	token, err := s.Begin()
	if err != nil {
		return err
	}
	return s.Load(ctx, token)
}

// Load fetches, shuffles and enriches the bracket's titles, then hands them
// to the controller. Failures move the tournament back to configuring with
// the error shown; a cancelled ctx leaves it loading.
func (s *TournamentService) Load(ctx context.Context, token uint64) error {
	cfg := s.controller.State().Config()

	if !s.source.APIKeySet() {
		return s.fail(ctx, token, catalog.ErrAPIKeyMissing)
	}

	items, err := s.source.Items(ctx, catalog.QueryFor(cfg))
	if err != nil {
		return s.fail(ctx, token, err)
	}
	if len(items) < cfg.BracketSize {
		return s.fail(ctx, token, &catalog.NotEnoughItemsError{Found: len(items), Need: cfg.BracketSize})
	}

	picked := s.shuffle(items)[:cfg.BracketSize]

	enriched, err := s.enricher.EnrichAll(ctx, picked, func(percent int) {
		if s.current(token) {
			s.progress.Store(int32(percent))
		}
	})
	if err != nil {
		return s.fail(ctx, token, err)
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if token != s.generation {
		return ErrSuperseded
	}
	state := s.controller.Dispatch(tournament.ItemsReady{Items: enriched})
	if state.Screen() != tournament.ScreenInProgress {
		s.recorder.TournamentFailed()
		return errors.New(state.ErrMessage())
	}
	return nil
}

func (s *TournamentService) current(token uint64) bool {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return token == s.generation
}

func (s *TournamentService) fail(ctx context.Context, token uint64, err error) error {
	if ctx.Err() != nil {
		return err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if token != s.generation {
		return ErrSuperseded
	}

	s.recorder.TournamentFailed()
	s.logger.Warn("tournament load failed", "error", err)
	s.controller.Dispatch(tournament.Fail{Message: err.Error()})
	return err
}

// Pick records the user's choice for the current matchup. Finishing the
// final stores the champion; a storage failure is only logged.
func (s *TournamentService) Pick(ctx context.Context, side bracket.Side) tournament.State {
	before, state := s.controller.Transition(tournament.PickWinner{Side: side})
	if state.Cursor() == before.Cursor() && state.Screen() == before.Screen() {
		return state
	}
	s.recorder.Pick()

	if before.Screen() == tournament.ScreenInProgress && state.Screen() == tournament.ScreenComplete {
		s.recorder.TournamentCompleted()
		s.saveChampion(ctx, state)
	}
	return state
}

func (s *TournamentService) saveChampion(ctx context.Context, state tournament.State) {
	if s.results == nil {
		return
	}
	champion, ok := state.Champion()
	if !ok {
		return
	}
	cfg := state.Config()
	result := bracket.NewResult(champion, state.BracketSize(), string(cfg.ContentFilter))
	if err := s.results.SaveResult(ctx, &result); err != nil {
		s.logger.Error("failed to save tournament result", "title", champion.Title, "error", err)
	}
}

// Reset discards the tournament, including any load still in flight.
func (s *TournamentService) Reset() tournament.State {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.generation++
	s.progress.Store(0)
	return s.controller.Dispatch(tournament.Reset{})
}

func (s *TournamentService) RecentChampions(ctx context.Context, limit int) ([]bracket.Result, error) {
	if s.results == nil {
		return []bracket.Result{}, nil
	}
	return s.results.ListRecent(ctx, limit)
}

func (s *TournamentService) MostCrowned(ctx context.Context, limit int) ([]store.CrownCount, error) {
	if s.results == nil {
		return []store.CrownCount{}, nil
	}
	return s.results.MostCrowned(ctx, limit)
}
