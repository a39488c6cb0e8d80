package bracket

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
	"slices"
)

// TotalRounds returns log2(bracketSize) for a power of two of at least 2.
func TotalRounds(bracketSize int) (int, bool) {
	if bracketSize < 2 || bits.OnesCount(uint(bracketSize)) != 1 {
		return 0, false
	}
	return bits.TrailingZeros(uint(bracketSize)), true
}

// RoundName names a round by how far it is from the final, so the 8 bracket
// opener and the third round of a 32 bracket are both "Quarterfinals".
func RoundName(roundIndex, totalRounds int) string {
	roundsFromEnd := totalRounds - roundIndex
	switch roundsFromEnd {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	case 3:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", 1<<roundsFromEnd)
	}
}

func pairUp(items []MediaItem) []Matchup {
	matchups := make([]Matchup, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		matchups = append(matchups, NewMatchup(items[i], items[i+1]))
	}
	return matchups
}

// Pair builds the opening round: items[0] vs items[1], items[2] vs items[3]
// and so on. len(items) must be a power of two.
func Pair(items []MediaItem) Round {
	totalRounds, ok := TotalRounds(len(items))
	if !ok {
		panic(fmt.Sprintf("bracket: cannot pair %d items, need a power of two", len(items)))
	}
	return Round{
		Name:     RoundName(0, totalRounds),
		Matchups: pairUp(items),
	}
}

// Advance appends the next round once every matchup in the last round is
// decided. It returns rounds untouched while the last round is still open or
// when the final has already been built.
func Advance(rounds []Round, totalRounds int) []Round {
	if len(rounds) == 0 {
		return rounds
	}
	current := rounds[len(rounds)-1]
	if !current.Complete() {
		return rounds
	}
	if len(rounds) >= totalRounds {
		return rounds
	}

	next := Round{
		Name:     RoundName(len(rounds), totalRounds),
		Matchups: pairUp(current.Winners()),
	}

	out := make([]Round, 0, len(rounds)+1)
	out = append(out, rounds...)
	return append(out, next)
}

// Champion returns the winner of the final once it has been decided.
func Champion(rounds []Round) (MediaItem, bool) {
	if len(rounds) == 0 {
		return MediaItem{}, false
	}
	final := rounds[len(rounds)-1]
	if len(final.Matchups) != 1 {
		return MediaItem{}, false
	}
	return final.Matchups[0].WinnerItem()
}

// Shuffle returns a uniformly random permutation of items. The argument is
// not modified.
func Shuffle[T any](items []T) []T {
	return shuffle(items, rand.IntN)
}

func shuffle[T any](items []T, intN func(int) int) []T {
	out := slices.Clone(items)
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
