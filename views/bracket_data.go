package views

import (
	"github.com/AdamBeresnev/decide2watch/internal/bracket"
)

type RecapMatchup struct {
	A, B   bracket.MediaItem
	Winner bracket.Side
}

type RecapRound struct {
	Name     string
	Matchups []RecapMatchup
}

type BracketData struct {
	Rounds []RecapRound
}

// PrepareBracketData flattens decided rounds for the winner recap. Undecided
// matchups are left out.
func PrepareBracketData(rounds []bracket.Round) BracketData {
	data := BracketData{Rounds: make([]RecapRound, 0, len(rounds))}
	for _, r := range rounds {
		recap := RecapRound{Name: r.Name, Matchups: make([]RecapMatchup, 0, len(r.Matchups))}
		for _, m := range r.Matchups {
			side, ok := m.Winner.Side()
			if !ok {
				continue
			}
			recap.Matchups = append(recap.Matchups, RecapMatchup{A: m.A, B: m.B, Winner: side})
		}
		data.Rounds = append(data.Rounds, recap)
	}
	return data
}
