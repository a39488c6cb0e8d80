package tournament

import (
	"slices"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
)

type Screen string

const (
	ScreenConfiguring Screen = "configuring"
	ScreenLoading     Screen = "loading"
	ScreenInProgress  Screen = "in_progress"
	ScreenComplete    Screen = "complete"
)

type ContentFilter string

const (
	FilterMovie ContentFilter = "movie"
	FilterTV    ContentFilter = "tv"
	FilterBoth  ContentFilter = "both"
)

func (f ContentFilter) Valid() bool {
	switch f {
	case FilterMovie, FilterTV, FilterBoth:
		return true
	}
	return false
}

var BracketSizes = []int{8, 16, 32}

func ValidBracketSize(size int) bool {
	return slices.Contains(BracketSizes, size)
}

type Config struct {
	ContentFilter ContentFilter
	BracketSize   int
	GenreID       *int
	SearchQuery   string
}

func DefaultConfig() Config {
	return Config{
		ContentFilter: FilterMovie,
		BracketSize:   16,
	}
}

type Cursor struct {
	Round   int
	Matchup int
}

// State is an immutable snapshot. Every transition in Reduce returns a new
// value and never edits rounds reachable from an older one.
type State struct {
	screen Screen
	config Config
	rounds []bracket.Round
	cursor Cursor
	err    *string
}

func Initial() State {
	return State{
		screen: ScreenConfiguring,
		config: DefaultConfig(),
	}
}

func (s State) Screen() Screen { return s.screen }
func (s State) Config() Config { return s.config }
func (s State) Cursor() Cursor { return s.cursor }

// Err returns the latest failure message, if any.
func (s State) Err() (string, bool) {
	if s.err == nil {
		return "", false
	}
	return *s.err, true
}

func (s State) ErrMessage() string {
	return utils.OrZero(s.err)
}

// Rounds returns a copy of the rounds built so far.
func (s State) Rounds() []bracket.Round {
	return bracket.CloneRounds(s.rounds)
}

// BracketSize is the number of contenders in the built bracket, or the
// configured size before one exists.
func (s State) BracketSize() int {
	if len(s.rounds) > 0 {
		return 2 * len(s.rounds[0].Matchups)
	}
	return s.config.BracketSize
}

func (s State) TotalRounds() int {
	n, _ := bracket.TotalRounds(s.BracketSize())
	return n
}

func (s State) CurrentRound() (bracket.Round, bool) {
	if s.screen != ScreenInProgress || s.cursor.Round >= len(s.rounds) {
		return bracket.Round{}, false
	}
	return s.rounds[s.cursor.Round], true
}

func (s State) CurrentMatchup() (bracket.Matchup, bool) {
	round, ok := s.CurrentRound()
	if !ok || s.cursor.Matchup >= len(round.Matchups) {
		return bracket.Matchup{}, false
	}
	return round.Matchups[s.cursor.Matchup], true
}

// Champion is only defined once the tournament is complete.
func (s State) Champion() (bracket.MediaItem, bool) {
	if s.screen != ScreenComplete {
		return bracket.MediaItem{}, false
	}
	return bracket.Champion(s.rounds)
}

// MatchNumber is the 1-based position of the pending matchup in its round.
func (s State) MatchNumber() int {
	return s.cursor.Matchup + 1
}

func (s State) MatchesInRound() int {
	round, ok := s.CurrentRound()
	if !ok {
		return 0
	}
	return len(round.Matchups)
}

// Progress is the share of all bracketSize-1 matchups decided so far.
func (s State) Progress() float64 {
	if s.screen == ScreenComplete {
		return 1
	}
	if s.screen != ScreenInProgress {
		return 0
	}

	totalRounds := s.TotalRounds()
	totalMatches := s.BracketSize() - 1
	if totalMatches <= 0 {
		return 0
	}

	completed := 0
	for r := 0; r < s.cursor.Round; r++ {
		completed += 1 << (totalRounds - 1 - r)
	}
	completed += s.cursor.Matchup

	return float64(completed) / float64(totalMatches)
}
