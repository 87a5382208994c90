package daily

import (
	"context"
	"database/sql"
	"errors"
)

// Result is one player's solve of a daily puzzle.
type Result struct {
	Username string `json:"username"`
	Date     string `json:"date"`
	Guesses  int    `json:"guesses"`
}

// Store persists daily words and results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// SeedWord returns the cached word for (date, language), or "" if none yet.
func (s *Store) SeedWord(ctx context.Context, date, language string) (string, error) {
	var word string
	err := s.db.QueryRowContext(ctx,
		`SELECT word FROM daily_words WHERE date=? AND language=?`, date, language,
	).Scan(&word)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return word, err
}

// SaveSeedWord stores word unless another writer got there first, and returns
// whichever word is now cached.
func (s *Store) SaveSeedWord(ctx context.Context, date, language, word string) (string, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_words(date, language, word) VALUES(?,?,?)`, date, language, word,
	); err != nil {
		return "", err
	}
	return s.SeedWord(ctx, date, language)
}

// InsertResult records a solve. A second solve for the same date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(username, date, guesses) VALUES(?,?,?)`,
		r.Username, r.Date, r.Guesses,
	)
	return err
}

// Leaderboard returns the best solves for date: fewest guesses, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, date, guesses
		FROM daily_results
		WHERE date=?
		ORDER BY guesses ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Username, &r.Date, &r.Guesses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
