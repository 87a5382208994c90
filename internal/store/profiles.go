// internal/store/profiles.go
//
// Player profiles: currency, experience, inventory, solved words, daily
// missions and the tutorial flag. Registered users and guests (keyed by
// their anonymous cookie) share the same tables.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/wordheat/internal/daily"
	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/game"
)

var ErrProfileNotFound = errors.New("store: profile not found")

// Profiles is the profile table gateway.
type Profiles struct {
	db    *sql.DB
	daily *daily.Store
	now   func() time.Time
}

func NewProfiles(db *sql.DB, d *daily.Store) *Profiles {
	return &Profiles{db: db, daily: d, now: time.Now}
}

// Ensure creates the profile row if it does not exist yet.
func (p *Profiles) Ensure(ctx context.Context, id, username string, guest bool) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO profiles (id, username, guest) VALUES (?,?,?)`, id, username, guest)
	return err
}

// For returns a handle on one profile. The row must exist (see Ensure).
func (p *Profiles) For(id, username string) *Profile {
	return &Profile{store: p, ID: id, Username: username}
}

// Profile is a handle for one player's row. It satisfies the session's
// profile contract and the economy's wallet.
type Profile struct {
	store    *Profiles
	ID       string
	Username string
}

func (p *Profile) db() *sql.DB { return p.store.db }

func (p *Profile) Level(ctx context.Context) (int, error) {
	var xp int
	if err := p.db().QueryRowContext(ctx, `SELECT xp FROM profiles WHERE id=?`, p.ID).Scan(&xp); err != nil {
		return 1, notFound(err)
	}
	return economy.Level(xp), nil
}

func (p *Profile) HasSolvedSeed(ctx context.Context, seed string) (bool, error) {
	if seed == "" {
		return false, nil
	}
	var ok bool
	err := p.db().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM solved_words WHERE profile_id=? AND seed=?)`, p.ID, seed).Scan(&ok)
	return ok, err
}

func (p *Profile) TutorialDone(ctx context.Context) (bool, error) {
	var done bool
	err := p.db().QueryRowContext(ctx, `SELECT tutorial_done FROM profiles WHERE id=?`, p.ID).Scan(&done)
	return done, notFound(err)
}

// RegisterWin records the solve, credits experience and, for the daily
// puzzle, enters the daily leaderboard. Coins are credited separately.
func (p *Profile) RegisterWin(ctx context.Context, w game.Win) error {
	tx, err := p.db().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seed any
	if w.Seed != "" {
		seed = w.Seed
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO solved_words (profile_id, word, guesses, mode, seed) VALUES (?,?,?,?,?)`,
		p.ID, w.Word, w.Guesses, string(w.Mode), seed); err != nil {
		return fmt.Errorf("insert solved word: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET wins = wins + 1, games_played = games_played + 1, xp = xp + ? WHERE id=?`,
		economy.WinXP, p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if w.Mode == game.ModeDaily && w.Seed != "" && p.store.daily != nil {
		return p.store.daily.InsertResult(ctx, daily.Result{Username: p.Username, Date: w.Seed, Guesses: w.Guesses})
	}
	return nil
}

// RegisterLoss counts a game that ended without a solve.
func (p *Profile) RegisterLoss(ctx context.Context) error {
	res, err := p.db().ExecContext(ctx, `UPDATE profiles SET games_played = games_played + 1 WHERE id=?`, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (p *Profile) AddCoins(ctx context.Context, n int) error {
	_, err := p.db().ExecContext(ctx, `UPDATE profiles SET coins = coins + ? WHERE id=?`, n, p.ID)
	return err
}

func (p *Profile) CompleteTutorial(ctx context.Context) error {
	_, err := p.db().ExecContext(ctx, `UPDATE profiles SET tutorial_done = 1 WHERE id=?`, p.ID)
	return err
}

// UpdateMissionProgress adds amount to today's counter for mission.
func (p *Profile) UpdateMissionProgress(ctx context.Context, mission string, amount int) error {
	_, err := p.db().ExecContext(ctx, `
		INSERT INTO missions (profile_id, date, mission, progress) VALUES (?,?,?,?)
		ON CONFLICT (profile_id, date, mission) DO UPDATE SET progress = progress + excluded.progress`,
		p.ID, daily.DateKey(p.store.now()), mission, amount)
	return err
}

// SpendCoins debits n coins only if the balance covers it.
func (p *Profile) SpendCoins(ctx context.Context, n int) (bool, error) {
	res, err := p.db().ExecContext(ctx,
		`UPDATE profiles SET coins = coins - ? WHERE id=? AND coins >= ?`, n, p.ID, n)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

// BuyItem debits price and adds one item in one transaction.
func (p *Profile) BuyItem(ctx context.Context, item string, price int) (bool, error) {
	tx, err := p.db().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET coins = coins - ? WHERE id=? AND coins >= ?`, price, p.ID, price)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO inventory (profile_id, item, qty) VALUES (?,?,1)
		ON CONFLICT (profile_id, item) DO UPDATE SET qty = qty + 1`, p.ID, item); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// ConsumeItem removes one item if any is held.
func (p *Profile) ConsumeItem(ctx context.Context, item string) (bool, error) {
	res, err := p.db().ExecContext(ctx,
		`UPDATE inventory SET qty = qty - 1 WHERE profile_id=? AND item=? AND qty > 0`, p.ID, item)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Summary is the /profile/me view.
type Summary struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Guest        bool           `json:"guest"`
	Coins        int            `json:"coins"`
	XP           int            `json:"xp"`
	Level        int            `json:"level"`
	Perks        []economy.Perk `json:"perks"`
	GamesPlayed  int            `json:"gamesPlayed"`
	Wins         int            `json:"wins"`
	TutorialDone bool           `json:"tutorialDone"`
	Language     string         `json:"language"`
	Inventory    map[string]int `json:"inventory"`
	Missions     map[string]int `json:"missions"`
}

var allPerks = []economy.Perk{economy.PerkThrifty, economy.PerkMoneyMaker, economy.PerkTimeLord}

func (p *Profile) Summary(ctx context.Context) (Summary, error) {
	s := Summary{ID: p.ID, Inventory: map[string]int{}, Missions: map[string]int{}}
	err := p.db().QueryRowContext(ctx, `
		SELECT username, guest, coins, xp, games_played, wins, tutorial_done, language
		FROM profiles WHERE id=?`, p.ID).
		Scan(&s.Username, &s.Guest, &s.Coins, &s.XP, &s.GamesPlayed, &s.Wins, &s.TutorialDone, &s.Language)
	if err != nil {
		return Summary{}, notFound(err)
	}
	s.Level = economy.Level(s.XP)
	s.Perks = lo.Filter(allPerks, func(perk economy.Perk, _ int) bool { return economy.HasPerk(s.Level, perk) })

	if err := p.collect(ctx, s.Inventory,
		`SELECT item, qty FROM inventory WHERE profile_id=? AND qty > 0`, p.ID); err != nil {
		return Summary{}, err
	}
	if err := p.collect(ctx, s.Missions,
		`SELECT mission, progress FROM missions WHERE profile_id=? AND date=?`, p.ID, daily.DateKey(p.store.now())); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (p *Profile) collect(ctx context.Context, into map[string]int, query string, args ...any) error {
	rows, err := p.db().QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		into[k] = v
	}
	return rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}
