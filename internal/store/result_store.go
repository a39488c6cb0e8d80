package store

import (
	"context"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
	"github.com/jmoiron/sqlx"
)

const (
	insertResultQuery = `
		INSERT INTO results (id, media_id, media_type, title, poster_path, bracket_size, content_filter, created_at)
		VALUES (:id, :media_id, :media_type, :title, :poster_path, :bracket_size, :content_filter, :created_at)
	`
	getResultQuery   = "SELECT * FROM results WHERE id = ?"
	listRecentQuery  = "SELECT * FROM results ORDER BY created_at DESC LIMIT ?"
	mostCrownedQuery = `
		SELECT media_id, media_type, MAX(title) AS title, COUNT(*) AS wins
		FROM results
		GROUP BY media_id, media_type
		ORDER BY wins DESC, MAX(created_at) DESC
		LIMIT ?
	`
)

// CrownCount is how often one title has won a tournament.
type CrownCount struct {
	MediaID   int               `db:"media_id"`
	MediaType bracket.MediaType `db:"media_type"`
	Title     string            `db:"title"`
	Wins      int               `db:"wins"`
}

type ResultStore struct {
	db *sqlx.DB
}

func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveResult(ctx context.Context, result *bracket.Result) error {
	_, err := s.db.NamedExecContext(ctx, insertResultQuery, result)
	return err
}

func (s *ResultStore) GetResult(ctx context.Context, id string) (*bracket.Result, error) {
	var result bracket.Result
	err := s.db.GetContext(ctx, &result, getResultQuery, id)
	return &result, err
}

func (s *ResultStore) ListRecent(ctx context.Context, limit int) ([]bracket.Result, error) {
	results := []bracket.Result{}
	err := s.db.SelectContext(ctx, &results, listRecentQuery, limit)
	return results, err
}

func (s *ResultStore) MostCrowned(ctx context.Context, limit int) ([]CrownCount, error) {
	counts := []CrownCount{}
	err := s.db.SelectContext(ctx, &counts, mostCrownedQuery, limit)
	return counts, err
}
