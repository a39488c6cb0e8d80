package bracket

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Round struct {
	Name     string
	Matchups []Matchup
}

func (r Round) Complete() bool {
	for _, m := range r.Matchups {
		if !m.IsDecided() {
			return false
		}
	}
	return true
}

// Winners lists the decided winners in matchup order. Callers check
// Complete first.
func (r Round) Winners() []MediaItem {
	winners := make([]MediaItem, 0, len(r.Matchups))
	for _, m := range r.Matchups {
		if w, ok := m.WinnerItem(); ok {
			winners = append(winners, w)
		}
	}
	return winners
}

func (r Round) clone() Round {
	r.Matchups = slices.Clone(r.Matchups)
	return r
}

// CloneRounds copies the round list and every matchup slice so the result
// can be edited without touching rounds.
func CloneRounds(rounds []Round) []Round {
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = r.clone()
	}
	return out
}

// Result is the record kept for a finished tournament.
type Result struct {
	ID            uuid.UUID `db:"id"`
	MediaID       int       `db:"media_id"`
	MediaType     MediaType `db:"media_type"`
	Title         string    `db:"title"`
	PosterPath    *string   `db:"poster_path"`
	BracketSize   int       `db:"bracket_size"`
	ContentFilter string    `db:"content_filter"`
	CreatedAt     time.Time `db:"created_at"`
}

func NewResult(champion MediaItem, bracketSize int, contentFilter string) Result {
	return Result{
		ID:            uuid.New(),
		MediaID:       champion.ID,
		MediaType:     champion.MediaType,
		Title:         champion.Title,
		PosterPath:    champion.PosterPath,
		BracketSize:   bracketSize,
		ContentFilter: contentFilter,
		CreatedAt:     time.Now().UTC(),
	}
}
