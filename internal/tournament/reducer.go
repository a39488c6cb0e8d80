package tournament

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/utils"
)

// Reduce applies e to s and returns the next state. It is pure: s is left
// as it was and may still be read by other holders.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case SetConfig:
		return setConfig(s, ev)

	case BeginLoad:
		next := s
		next.screen = ScreenLoading
		next.err = nil
		return next

	case ItemsReady:
		return itemsReady(s, ev.Items)

	case PickWinner:
		return pickWinner(s, ev.Side)

	case Fail:
		return fail(s, ev.Message)

	case Reset:
		return Initial()

	default:
		return s
	}
}

func setConfig(s State, ev SetConfig) State {
	// the size of a built or loading bracket is fixed
	if s.screen != ScreenConfiguring {
		return s
	}

	cfg := s.config
	if ev.ContentFilter != nil {
		cfg.ContentFilter = *ev.ContentFilter
	}
	if ev.BracketSize != nil {
		cfg.BracketSize = *ev.BracketSize
	}
	switch {
	case ev.ClearGenre:
		cfg.GenreID = nil
	case ev.GenreID != nil:
		cfg.GenreID = utils.Ptr(*ev.GenreID)
	}
	if ev.SearchQuery != nil {
		cfg.SearchQuery = strings.TrimSpace(*ev.SearchQuery)
	}

	if !cfg.ContentFilter.Valid() {
		return fail(s, fmt.Sprintf("Unsupported content filter %q", cfg.ContentFilter))
	}
	if !ValidBracketSize(cfg.BracketSize) {
		return fail(s, fmt.Sprintf("Unsupported bracket size %d, choose one of %s", cfg.BracketSize, sizeList()))
	}

	next := s
	next.config = cfg
	return next
}

func itemsReady(s State, items []bracket.MediaItem) State {
	size := s.config.BracketSize
	if !ValidBracketSize(size) {
		return fail(s, fmt.Sprintf("Unsupported bracket size %d, choose one of %s", size, sizeList()))
	}
	if len(items) != size {
		return fail(s, fmt.Sprintf("Expected %d titles for the bracket but got %d", size, len(items)))
	}

	next := s
	next.rounds = []bracket.Round{bracket.Pair(slices.Clone(items))}
	next.cursor = Cursor{}
	next.screen = ScreenInProgress
	return next
}

func pickWinner(s State, side bracket.Side) State {
	if s.screen != ScreenInProgress || !side.Valid() {
		return s
	}
	c := s.cursor
	if c.Round >= len(s.rounds) || c.Matchup >= len(s.rounds[c.Round].Matchups) {
		return s
	}

	// Copy only the outer list and the round being written to
	rounds := slices.Clone(s.rounds)
	round := rounds[c.Round]
	round.Matchups = slices.Clone(round.Matchups)
	round.Matchups[c.Matchup] = round.Matchups[c.Matchup].Decide(side)
	rounds[c.Round] = round

	next := s
	next.rounds = rounds

	if c.Matchup+1 < len(round.Matchups) {
		next.cursor = Cursor{Round: c.Round, Matchup: c.Matchup + 1}
		return next
	}

	totalRounds := s.TotalRounds()
	if c.Round+1 >= totalRounds {
		next.screen = ScreenComplete
		return next
	}

	next.rounds = bracket.Advance(rounds, totalRounds)
	next.cursor = Cursor{Round: c.Round + 1}
	return next
}

func fail(s State, message string) State {
	return State{
		screen: ScreenConfiguring,
		config: s.config,
		err:    utils.Ptr(message),
	}
}

func sizeList() string {
	parts := make([]string, len(BracketSizes))
	for i, size := range BracketSizes {
		parts[i] = fmt.Sprint(size)
	}
	return strings.Join(parts, ", ")
}
