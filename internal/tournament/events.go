package tournament

import "github.com/AdamBeresnev/decide2watch/internal/bracket"

type Event interface{ isEvent() }

// SetConfig merges the fields that are set into the current config; nil
// fields keep their value. ClearGenre drops the genre and wins over GenreID.
// It only applies while the tournament is being configured.
type SetConfig struct {
	ContentFilter *ContentFilter
	BracketSize   *int
	GenreID       *int
	ClearGenre    bool
	SearchQuery   *string
}

// ReplaceConfig builds a SetConfig that overwrites every field with cfg's.
func ReplaceConfig(cfg Config) SetConfig {
	return SetConfig{
		ContentFilter: &cfg.ContentFilter,
		BracketSize:   &cfg.BracketSize,
		GenreID:       cfg.GenreID,
		ClearGenre:    cfg.GenreID == nil,
		SearchQuery:   &cfg.SearchQuery,
	}
}

type BeginLoad struct{}

// ItemsReady carries the already ordered (shuffled) contenders.
type ItemsReady struct {
	Items []bracket.MediaItem
}

type PickWinner struct {
	Side bracket.Side
}

type Fail struct {
	Message string
}

type Reset struct{}

func (SetConfig) isEvent()  {}
func (BeginLoad) isEvent()  {}
func (ItemsReady) isEvent() {}
func (PickWinner) isEvent() {}
func (Fail) isEvent()       {}
func (Reset) isEvent()      {}
