// internal/store/challenges.go
//
// SQL implementation of the challenge store.
//
// Notes:
//   - Guess columns keep the legacy sentinels (NULL unset, 999 surrendered,
//     0 spectating setter). They are translated to challenge.Count here and
//     nowhere else.
//   - Every write bumps version; the fresh row is published to subscribers.
//   - SetWinner only writes when winner IS NULL; UpdateProgress only while
//     the side is not finished.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordheat/internal/challenge"
	"github.com/robalobadob/wordheat/internal/realtime"
)

const (
	surrenderedGuesses = 999
	spectatingGuesses  = 0
)

// Challenges persists challenge records.
type Challenges struct {
	db  *sql.DB
	hub *realtime.Hub[challenge.Record]
	now func() time.Time
}

func NewChallenges(db *sql.DB) *Challenges {
	return &Challenges{db: db, hub: realtime.NewHub[challenge.Record](0), now: time.Now}
}

const challengeColumns = `id, word, seed, challenger, opponent,
	challenger_status, opponent_status, challenger_guesses, opponent_guesses,
	challenger_started_at, opponent_started_at, challenger_finished_at, opponent_finished_at,
	status, winner, version, created_at`

func (c *Challenges) Create(ctx context.Context, in challenge.NewChallenge) (challenge.Record, error) {
	r := challenge.NewRecord(uuid.NewString(), in, c.now().UTC())
	_, err := c.db.ExecContext(ctx, `INSERT INTO challenges (`+challengeColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Word, r.Seed, r.Challenger.Name, r.Opponent.Name,
		string(r.Challenger.Status), string(r.Opponent.Status),
		encodeCount(r.Challenger.Count), encodeCount(r.Opponent.Count),
		encodeTime(r.Challenger.StartedAt), encodeTime(r.Opponent.StartedAt),
		encodeTime(r.Challenger.FinishedAt), encodeTime(r.Opponent.FinishedAt),
		string(r.Status), nil, r.Version, r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return challenge.Record{}, fmt.Errorf("insert challenge: %w", err)
	}
	return r, nil
}

func (c *Challenges) Get(ctx context.Context, id string) (challenge.Record, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id=?`, id)
	return scanChallenge(row)
}

// ChallengeWord serves the word provider.
func (c *Challenges) ChallengeWord(ctx context.Context, id string) (string, bool, error) {
	var word string
	err := c.db.QueryRowContext(ctx, `SELECT word FROM challenges WHERE id=?`, id).Scan(&word)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return word, err == nil, err
}

func (c *Challenges) Accept(ctx context.Context, id, opponent string) (challenge.Record, error) {
	return c.write(ctx, id, `
		UPDATE challenges SET
			status = 'accepted',
			opponent = CASE WHEN opponent = '' THEN ? ELSE opponent END,
			opponent_status = 'playing',
			opponent_started_at = ?,
			version = version + 1
		WHERE id=? AND status='pending'`,
		opponent, encodeTime(ptr(c.now().UTC())), id)
}

func (c *Challenges) UpdateProgress(ctx context.Context, id string, role challenge.Role, p challenge.Progress) (challenge.Record, error) {
	var prefix string
	switch role {
	case challenge.Challenger:
		prefix = "challenger"
	case challenge.Opponent:
		prefix = "opponent"
	default:
		return challenge.Record{}, fmt.Errorf("store: unknown role %q", role)
	}
	return c.write(ctx, id, fmt.Sprintf(`
		UPDATE challenges SET
			%[1]s_status = ?, %[1]s_guesses = ?, %[1]s_finished_at = ?,
			version = version + 1
		WHERE id=? AND %[1]s_status != 'finished'`, prefix),
		string(p.Status), encodeCount(p.Count), encodeTime(p.FinishedAt), id)
}

func (c *Challenges) SetWinner(ctx context.Context, id, winner string) (challenge.Record, error) {
	return c.write(ctx, id, `
		UPDATE challenges SET winner = ?, status = 'completed', version = version + 1
		WHERE id=? AND winner IS NULL`, winner, id)
}

func (c *Challenges) Subscribe(id string) (<-chan challenge.Record, func()) {
	return c.hub.Subscribe(id)
}

// write runs a conditional update, then reads the row back. A no-op update
// is not an error; the current row is returned unpublished.
func (c *Challenges) write(ctx context.Context, id, query string, args ...any) (challenge.Record, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return challenge.Record{}, fmt.Errorf("update challenge %s: %w", id, err)
	}
	rec, err := c.Get(ctx, id)
	if err != nil {
		return challenge.Record{}, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		c.hub.Publish(id, rec)
	}
	return rec, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanChallenge(row rowScanner) (challenge.Record, error) {
	var (
		r                          challenge.Record
		cStatus, oStatus, status   string
		cGuesses, oGuesses         sql.NullInt64
		cStart, oStart, cEnd, oEnd sql.NullString
		winner                     sql.NullString
		created                    string
	)
	err := row.Scan(&r.ID, &r.Word, &r.Seed, &r.Challenger.Name, &r.Opponent.Name,
		&cStatus, &oStatus, &cGuesses, &oGuesses,
		&cStart, &oStart, &cEnd, &oEnd,
		&status, &winner, &r.Version, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return challenge.Record{}, challenge.ErrNotFound
	}
	if err != nil {
		return challenge.Record{}, err
	}
	r.Challenger.Status = challenge.PartyStatus(cStatus)
	r.Opponent.Status = challenge.PartyStatus(oStatus)
	r.Challenger.Count = decodeCount(cGuesses)
	r.Opponent.Count = decodeCount(oGuesses)
	r.Challenger.StartedAt, r.Opponent.StartedAt = decodeTime(cStart), decodeTime(oStart)
	r.Challenger.FinishedAt, r.Opponent.FinishedAt = decodeTime(cEnd), decodeTime(oEnd)
	r.Status = challenge.Status(status)
	r.Winner = winner.String
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return r, nil
}

func encodeCount(c challenge.Count) sql.NullInt64 {
	switch c.Kind {
	case challenge.Guesses:
		return sql.NullInt64{Int64: int64(c.N), Valid: true}
	case challenge.Surrendered:
		return sql.NullInt64{Int64: surrenderedGuesses, Valid: true}
	case challenge.Spectating:
		return sql.NullInt64{Int64: spectatingGuesses, Valid: true}
	}
	return sql.NullInt64{}
}

func decodeCount(n sql.NullInt64) challenge.Count {
	switch {
	case !n.Valid:
		return challenge.Count{}
	case n.Int64 == surrenderedGuesses:
		return challenge.Count{Kind: challenge.Surrendered}
	case n.Int64 == spectatingGuesses:
		return challenge.Count{Kind: challenge.Spectating}
	}
	return challenge.GuessCount(int(n.Int64))
}

func encodeTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func decodeTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func ptr[T any](v T) *T { return &v }
