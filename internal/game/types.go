// internal/game/types.go
//
// Core type definitions for the WordHeat session engine.
// Defines:
//   - Status, Mode: session lifecycle and entry mode.
//   - Guess: one scored entry of the guess log.
//   - Params: the session entry parameter bag.
//   - The collaborator interfaces a Session depends on.
package game

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/heat"
	"github.com/robalobadob/wordheat/internal/oracle"
	"github.com/robalobadob/wordheat/internal/party"
	"github.com/robalobadob/wordheat/internal/words"
)

var (
	ErrAlreadyPlayed   = errors.New("game: daily puzzle already played")
	ErrBusy            = errors.New("game: another request is in flight")
	ErrAwaitingHandoff = errors.New("game: waiting for the next player")
	ErrNotPlaying      = errors.New("game: session is over")
	ErrNotParty        = errors.New("game: not a party session")
	ErrNoShop          = errors.New("game: shop unavailable")
)

// Status moves one way: playing → won | lost.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Mode is how the session was entered.
type Mode string

const (
	ModeDaily     Mode = "daily"
	ModeUnlimited Mode = "unlimited"
	ModeBlitz     Mode = "blitz"
	ModeParty     Mode = "party"
	ModeTutorial  Mode = "tutorial"
	ModeChallenge Mode = "challenge"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDaily, ModeUnlimited, ModeBlitz, ModeParty, ModeTutorial, ModeChallenge:
		return true
	}
	return false
}

// TutorialWord is the fixed target of the tutorial.
const TutorialWord = "water"

// Mission ids reported to the profile.
const (
	MissionWinGame    = "WIN_GAME"
	MissionPlayBlitz  = "PLAY_BLITZ"
	MissionGetBurning = "GET_BURNING"
)

// Guess is immutable once logged.
type Guess struct {
	Word        string           `json:"word"`
	Score       int              `json:"score"`
	Rank        int              `json:"rank,omitempty"`
	Temperature heat.Temperature `json:"temperature"`
	At          time.Time        `json:"at"`
}

// Params is the session entry parameter bag.
type Params struct {
	Mode        Mode         `json:"mode" validate:"required"`
	Language    string       `json:"language"`
	Category    string       `json:"category"`
	Topic       string       `json:"topic"`
	Date        string       `json:"date"`
	ChallengeID string       `json:"challengeId"`
	Word        string       `json:"word"` // base64 preset from an invite
	Party       party.Config `json:"party"`
	// Hard hides numeric scores while the round is open; only temperatures show.
	Hard        bool         `json:"hard"`
}

// Win is what the profile records for a solved session.
type Win struct {
	Word    string
	Guesses int
	Mode    Mode
	Seed    string
}

// Targets resolves the secret word.
type Targets interface {
	Obtain(ctx context.Context, req words.Request) (words.Target, error)
}

// Scorer scores a guess. A returned error means the caller picks the fallback.
type Scorer interface {
	Score(ctx context.Context, target, guess, language string) (oracle.Similarity, error)
}

// Shop runs hint and power-up transactions.
type Shop interface {
	PurchaseHint(ctx context.Context, kind economy.HintKind, in economy.Context) (economy.Hint, error)
	UsePowerup(ctx context.Context, id economy.Item, in economy.Context) (economy.Effect, error)
}

// Commentator supplies post-game content.
type Commentator interface {
	Recap(ctx context.Context, target, language string, history []string) (string, error)
	RelatedWords(ctx context.Context, target, language string) ([]string, error)
	Definition(ctx context.Context, word, language string) (string, error)
}

// Profile is the narrow view of the player profile a session needs.
type Profile interface {
	Level(ctx context.Context) (int, error)
	HasSolvedSeed(ctx context.Context, seed string) (bool, error)
	TutorialDone(ctx context.Context) (bool, error)
	RegisterWin(ctx context.Context, w Win) error
	RegisterLoss(ctx context.Context) error
	AddCoins(ctx context.Context, n int) error
	CompleteTutorial(ctx context.Context) error
	UpdateMissionProgress(ctx context.Context, mission string, amount int) error
}

// ChallengeLink propagates this player's progress to a shared challenge.
type ChallengeLink interface {
	PushProgress(guesses int, solved bool)
	Surrender()
	Close()
}

// TurnSequencer gates guesses in party mode.
type TurnSequencer interface {
	Ready() bool
	AfterGuess(won bool)
	Acknowledge()
	State() party.State
}

// EventKind names a session event pushed to observers.
type EventKind string

const (
	EventGuess   EventKind = "guess"
	EventTick    EventKind = "tick"
	EventStatus  EventKind = "status"
	EventContent EventKind = "content" // recap, related words and definition arrived
)

// Event is delivered to Deps.Notify.
type Event struct {
	Kind      EventKind `json:"kind"`
	Status    Status    `json:"status"`
	Remaining int       `json:"remaining,omitempty"`
	Guess     *Guess    `json:"guess,omitempty"`
}
