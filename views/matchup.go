package views

import (
	"math"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/AdamBeresnev/decide2watch/internal/tournament"
)

type MatchupData struct {
	RoundName      string
	MatchNumber    int
	MatchesInRound int
	Percent        int
	A, B           bracket.MediaItem
}

func NewMatchupData(state tournament.State) (MatchupData, bool) {
	round, ok := state.CurrentRound()
	if !ok {
		return MatchupData{}, false
	}
	m, ok := state.CurrentMatchup()
	if !ok {
		return MatchupData{}, false
	}
	return MatchupData{
		RoundName:      round.Name,
		MatchNumber:    state.MatchNumber(),
		MatchesInRound: state.MatchesInRound(),
		Percent:        int(math.Round(state.Progress() * 100)),
		A:              m.A,
		B:              m.B,
	}, true
}
