package tournament

import (
	"fmt"
	"sync"
	"testing"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []bracket.MediaItem {
	items := make([]bracket.MediaItem, n)
	for i := range items {
		items[i] = bracket.MediaItem{
			ID:        i + 1,
			MediaType: bracket.MediaMovie,
			Title:     fmt.Sprintf("Movie %d", i+1),
		}
	}
	return items
}

func started(t *testing.T, size int) State {
	t.Helper()
	s := Reduce(Initial(), ReplaceConfig(Config{ContentFilter: FilterMovie, BracketSize: size}))
	s = Reduce(s, BeginLoad{})
	s = Reduce(s, ItemsReady{Items: makeItems(size)})
	require.Equal(t, ScreenInProgress, s.Screen())
	return s
}

var cmpOpts = cmp.AllowUnexported(bracket.Outcome{})

func TestInitialState(t *testing.T) {
	s := Initial()
	assert.Equal(t, ScreenConfiguring, s.Screen())
	assert.Equal(t, DefaultConfig(), s.Config())
	assert.Empty(t, s.Rounds())
	_, hasErr := s.Err()
	assert.False(t, hasErr)
	assert.Zero(t, s.Progress())
}

func TestSetConfig(t *testing.T) {
	genre := 28
	s := Reduce(Initial(), ReplaceConfig(Config{
		ContentFilter: FilterBoth,
		BracketSize:   32,
		GenreID:       &genre,
		SearchQuery:   "  heist  ",
	}))
	genre = 35

	assert.Equal(t, ScreenConfiguring, s.Screen())
	cfg := s.Config()
	assert.Equal(t, FilterBoth, cfg.ContentFilter)
	assert.Equal(t, 32, cfg.BracketSize)
	assert.Equal(t, utils.Ptr(28), cfg.GenreID, "genre must not alias the caller's value")
	assert.Equal(t, "heist", cfg.SearchQuery)
}

func TestSetConfigRejectsUnsupportedValues(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		message string
	}{
		{
			name:    "size not a power of two",
			config:  Config{ContentFilter: FilterMovie, BracketSize: 12},
			message: "Unsupported bracket size 12, choose one of 8, 16, 32",
		},
		{
			name:    "power of two outside the supported set",
			config:  Config{ContentFilter: FilterMovie, BracketSize: 4},
			message: "Unsupported bracket size 4, choose one of 8, 16, 32",
		},
		{
			name:    "unknown filter",
			config:  Config{ContentFilter: "anime", BracketSize: 8},
			message: `Unsupported content filter "anime"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Reduce(Initial(), ReplaceConfig(tc.config))
			assert.Equal(t, ScreenConfiguring, s.Screen())
			msg, ok := s.Err()
			require.True(t, ok)
			assert.Equal(t, tc.message, msg)
			assert.Equal(t, DefaultConfig(), s.Config(), "invalid config must not be merged")
		})
	}
}

func TestSetConfigMergesSetFields(t *testing.T) {
	size := 32
	s := Reduce(Initial(), SetConfig{BracketSize: &size})

	_, failed := s.Err()
	assert.False(t, failed)
	assert.Equal(t, Config{ContentFilter: FilterMovie, BracketSize: 32}, s.Config())

	genre := 99
	query := " space "
	s = Reduce(s, SetConfig{GenreID: &genre, SearchQuery: &query})
	assert.Equal(t, Config{ContentFilter: FilterMovie, BracketSize: 32, GenreID: utils.Ptr(99), SearchQuery: "space"}, s.Config())

	filter := FilterTV
	s = Reduce(s, SetConfig{ContentFilter: &filter})
	assert.Equal(t, utils.Ptr(99), s.Config().GenreID, "unset genre is kept")

	s = Reduce(s, SetConfig{ClearGenre: true, GenreID: &genre})
	assert.Nil(t, s.Config().GenreID)
	assert.Equal(t, FilterTV, s.Config().ContentFilter)
	assert.Equal(t, "space", s.Config().SearchQuery)
}

func TestSetConfigValidatesMergedConfig(t *testing.T) {
	size := 12
	s := Reduce(Initial(), SetConfig{BracketSize: &size})

	assert.Equal(t, "Unsupported bracket size 12, choose one of 8, 16, 32", s.ErrMessage())
	assert.Equal(t, DefaultConfig(), s.Config())

	// an empty update is a no-op on a valid config
	s = Reduce(Initial(), SetConfig{})
	assert.Equal(t, Initial(), s)
}

func TestSetConfigIgnoredOutsideSetup(t *testing.T) {
	size := 16
	filter := FilterTV

	loading := Reduce(Reduce(Initial(), ReplaceConfig(Config{ContentFilter: FilterMovie, BracketSize: 8})), BeginLoad{})
	assert.Equal(t, loading, Reduce(loading, SetConfig{BracketSize: &size}))

	s := started(t, 8)
	s = Reduce(s, PickWinner{Side: bracket.SideB})
	s = Reduce(s, SetConfig{BracketSize: &size, ContentFilter: &filter})
	assert.Equal(t, 8, s.Config().BracketSize)
	assert.Equal(t, FilterMovie, s.Config().ContentFilter)

	for range 6 {
		s = Reduce(s, PickWinner{Side: bracket.SideA})
	}
	require.Equal(t, ScreenComplete, s.Screen())
	champion, ok := s.Champion()
	require.True(t, ok)
	assert.Equal(t, 2, champion.ID)

	assert.Equal(t, s, Reduce(s, SetConfig{BracketSize: &size}))
}

func TestBeginLoadClearsError(t *testing.T) {
	s := Reduce(Initial(), Fail{Message: "boom"})
	assert.Equal(t, "boom", s.ErrMessage())

	s = Reduce(s, BeginLoad{})
	assert.Equal(t, ScreenLoading, s.Screen())
	_, hasErr := s.Err()
	assert.False(t, hasErr)
}

func TestItemsReady(t *testing.T) {
	s := started(t, 8)

	rounds := s.Rounds()
	require.Len(t, rounds, 1)
	assert.Equal(t, "Quarterfinals", rounds[0].Name)
	assert.Len(t, rounds[0].Matchups, 4)
	assert.Equal(t, Cursor{}, s.Cursor())

	m, ok := s.CurrentMatchup()
	require.True(t, ok)
	assert.Equal(t, 1, m.A.ID)
	assert.Equal(t, 2, m.B.ID)
	assert.Equal(t, 1, s.MatchNumber())
	assert.Equal(t, 4, s.MatchesInRound())
}

func TestItemsReadyWrongCount(t *testing.T) {
	s := Reduce(Initial(), ReplaceConfig(Config{ContentFilter: FilterTV, BracketSize: 16}))
	s = Reduce(s, BeginLoad{})
	s = Reduce(s, ItemsReady{Items: makeItems(9)})

	assert.Equal(t, ScreenConfiguring, s.Screen())
	assert.Equal(t, "Expected 16 titles for the bracket but got 9", s.ErrMessage())
	assert.Empty(t, s.Rounds())
	assert.Equal(t, FilterTV, s.Config().ContentFilter, "config survives a failure")
}

func TestPickWinnerMovesCursor(t *testing.T) {
	s := started(t, 8)
	s = Reduce(s, PickWinner{Side: bracket.SideB})

	assert.Equal(t, ScreenInProgress, s.Screen())
	assert.Equal(t, Cursor{Round: 0, Matchup: 1}, s.Cursor())

	winner, ok := s.Rounds()[0].Matchups[0].WinnerItem()
	require.True(t, ok)
	assert.Equal(t, 2, winner.ID)
}

func TestPickWinnerBuildsNextRound(t *testing.T) {
	s := started(t, 8)
	for _, side := range []bracket.Side{bracket.SideA, bracket.SideB, bracket.SideA, bracket.SideB} {
		s = Reduce(s, PickWinner{Side: side})
	}

	rounds := s.Rounds()
	require.Len(t, rounds, 2)
	assert.Equal(t, "Semifinals", rounds[1].Name)
	assert.Len(t, rounds[1].Matchups, 2)
	assert.Equal(t, Cursor{Round: 1, Matchup: 0}, s.Cursor())

	m, ok := s.CurrentMatchup()
	require.True(t, ok)
	assert.Equal(t, 1, m.A.ID)
	assert.Equal(t, 4, m.B.ID)
	assert.False(t, m.IsDecided())
}

func TestPickWinnerCompletes(t *testing.T) {
	for _, size := range BracketSizes {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			s := started(t, size)

			picks := 0
			for s.Screen() == ScreenInProgress {
				m, ok := s.CurrentMatchup()
				require.True(t, ok, "cursor must point at a matchup")
				require.False(t, m.IsDecided(), "cursor must point at an open matchup")

				side := bracket.SideA
				if picks%3 == 0 {
					side = bracket.SideB
				}
				s = Reduce(s, PickWinner{Side: side})
				picks++
				require.LessOrEqual(t, picks, size-1)
			}

			assert.Equal(t, size-1, picks)
			assert.Equal(t, ScreenComplete, s.Screen())
			champion, ok := s.Champion()
			require.True(t, ok)

			rounds := s.Rounds()
			totalRounds, _ := bracket.TotalRounds(size)
			assert.Len(t, rounds, totalRounds)
			final, _ := rounds[len(rounds)-1].Matchups[0].WinnerItem()
			assert.Equal(t, final.Key(), champion.Key())
			assert.Equal(t, 1.0, s.Progress())
		})
	}
}

func TestPickWinnerMatchesAdvance(t *testing.T) {
	const size = 16
	totalRounds, _ := bracket.TotalRounds(size)
	s := started(t, size)

	expected := []bracket.Round{bracket.Pair(makeItems(size))}
	pick := 0
	for s.Screen() == ScreenInProgress {
		side := bracket.SideA
		if pick%2 == 1 {
			side = bracket.SideB
		}
		c := s.Cursor()
		s = Reduce(s, PickWinner{Side: side})

		expected = bracket.CloneRounds(expected)
		expected[c.Round].Matchups[c.Matchup] = expected[c.Round].Matchups[c.Matchup].Decide(side)
		expected = bracket.Advance(expected, totalRounds)
		pick++

		if diff := cmp.Diff(expected, s.Rounds(), cmpOpts); diff != "" {
			t.Fatalf("controller diverged from Advance after pick %d (-want +got):\n%s", pick, diff)
		}
	}
}

func TestPickWinnerIgnoredOutsideInProgress(t *testing.T) {
	s := Initial()
	assert.Equal(t, s, Reduce(s, PickWinner{Side: bracket.SideA}))

	loading := Reduce(s, BeginLoad{})
	assert.Equal(t, loading, Reduce(loading, PickWinner{Side: bracket.SideA}))
}

func TestPickWinnerIgnoresInvalidSide(t *testing.T) {
	s := started(t, 8)
	next := Reduce(s, PickWinner{Side: bracket.Side(0)})
	assert.Equal(t, s.Cursor(), next.Cursor())
	assert.False(t, next.Rounds()[0].Matchups[0].IsDecided())
}

func TestPreviousStateIsUntouched(t *testing.T) {
	s := started(t, 8)
	before := s.Rounds()

	_ = Reduce(s, PickWinner{Side: bracket.SideA})

	if diff := cmp.Diff(before, s.Rounds(), cmpOpts); diff != "" {
		t.Errorf("older state changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, Cursor{}, s.Cursor())
}

func TestFailDiscardsProgress(t *testing.T) {
	s := started(t, 8)
	s = Reduce(s, PickWinner{Side: bracket.SideA})
	s = Reduce(s, Fail{Message: "TMDB API error: 503"})

	assert.Equal(t, ScreenConfiguring, s.Screen())
	assert.Equal(t, "TMDB API error: 503", s.ErrMessage())
	assert.Empty(t, s.Rounds())
	assert.Equal(t, Cursor{}, s.Cursor())
	_, ok := s.CurrentMatchup()
	assert.False(t, ok)
}

func TestResetFromAnyState(t *testing.T) {
	complete := started(t, 8)
	for complete.Screen() == ScreenInProgress {
		complete = Reduce(complete, PickWinner{Side: bracket.SideA})
	}

	states := map[string]State{
		"configuring": Initial(),
		"loading":     Reduce(Initial(), BeginLoad{}),
		"in progress": started(t, 16),
		"complete":    complete,
		"failed":      Reduce(Initial(), Fail{Message: "nope"}),
	}

	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Initial(), Reduce(s, Reset{}))
		})
	}
}

func TestProgress(t *testing.T) {
	s := started(t, 8)
	assert.Zero(t, s.Progress())

	s = Reduce(s, PickWinner{Side: bracket.SideA})
	assert.InDelta(t, 1.0/7.0, s.Progress(), 1e-9)

	for range 3 {
		s = Reduce(s, PickWinner{Side: bracket.SideA})
	}
	// All four quarterfinals done, first semifinal pending
	assert.Equal(t, Cursor{Round: 1}, s.Cursor())
	assert.InDelta(t, 4.0/7.0, s.Progress(), 1e-9)

	s = Reduce(s, PickWinner{Side: bracket.SideA})
	s = Reduce(s, PickWinner{Side: bracket.SideA})
	assert.InDelta(t, 6.0/7.0, s.Progress(), 1e-9)
}

func TestProgressFollowsBuiltBracket(t *testing.T) {
	s := started(t, 16)
	assert.Equal(t, 16, s.BracketSize())
	assert.Equal(t, 4, s.TotalRounds())

	for range 8 {
		s = Reduce(s, PickWinner{Side: bracket.SideA})
	}
	assert.Equal(t, Cursor{Round: 1}, s.Cursor())
	assert.InDelta(t, 8.0/15.0, s.Progress(), 1e-9)

	loading := Reduce(Reduce(Initial(), ReplaceConfig(Config{ContentFilter: FilterMovie, BracketSize: 8})), BeginLoad{})
	assert.Zero(t, loading.Progress())
	assert.Zero(t, Reduce(Initial(), Fail{Message: "nope"}).Progress())
}

func TestControllerDispatch(t *testing.T) {
	c := NewController(nil)
	assert.Equal(t, Initial(), c.State())

	c.Dispatch(ReplaceConfig(Config{ContentFilter: FilterMovie, BracketSize: 8}))
	c.Dispatch(BeginLoad{})
	s := c.Dispatch(ItemsReady{Items: makeItems(8)})
	assert.Equal(t, ScreenInProgress, s.Screen())
	assert.Equal(t, s, c.State())

	c.Dispatch(Reset{})
	assert.Equal(t, Initial(), c.State())
}

func TestControllerSerializesPicks(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(ReplaceConfig(Config{ContentFilter: FilterMovie, BracketSize: 32}))
	c.Dispatch(ItemsReady{Items: makeItems(32)})

	var wg sync.WaitGroup
	for range 31 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Dispatch(PickWinner{Side: bracket.SideA})
		}()
	}
	wg.Wait()

	s := c.State()
	assert.Equal(t, ScreenComplete, s.Screen())
	champion, ok := s.Champion()
	require.True(t, ok)
	assert.Equal(t, 1, champion.ID, "always picking side a crowns the first item")
}
