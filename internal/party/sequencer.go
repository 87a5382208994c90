// internal/party/sequencer.go
//
// Same-device multiplayer turn order.
//
// Responsibilities:
//   - Build the rotation from the party parameters (size, teams, names).
//   - Advance cyclically after every non-winning guess, behind a
//     "pass the device" hand-off the next player must acknowledge.
//   - Setter mode: player 1 supplies the word and watches; player 2 solves alone.
package party

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robalobadob/wordheat/internal/words"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
)

var teamNames = []string{"Team Red", "Team Blue"}

// Config is the party section of the session entry parameters.
type Config struct {
	Players int      `json:"players"`
	Teams   bool     `json:"teams"`
	Names   []string `json:"names"`
	Word    string   `json:"word"` // base64 secret; enables Setter mode
}

// State is a read-only view of the rotation.
type State struct {
	Players         []string `json:"players"`
	Current         int      `json:"current"` // 1-based
	CurrentName     string   `json:"currentName"`
	AwaitingHandoff bool     `json:"awaitingHandoff"`
	Setter          bool     `json:"setter"`
}

// Sequencer tracks whose turn it is. It is safe for concurrent use.
type Sequencer struct {
	mu      sync.Mutex
	players []string
	current int
	setter  bool
	pending bool
}

// New builds a sequencer. A new party starts with a pending hand-off.
func New(cfg Config) (*Sequencer, error) {
	s := &Sequencer{current: 1, pending: true}

	if strings.TrimSpace(cfg.Word) != "" {
		// The session resolves the word itself; decode only to reject bad links.
		if _, err := words.DecodePreset(cfg.Word); err != nil {
			return nil, fmt.Errorf("party setter word: %w", err)
		}
		s.setter = true
		s.players = names(cfg.Names, 2, []string{"Setter", "Solver"})
		s.current = 2
		return s, nil
	}

	if cfg.Teams {
		s.players = names(cfg.Names, len(teamNames), teamNames)
		return s, nil
	}
	n := min(max(cfg.Players, MinPlayers), MaxPlayers)
	s.players = names(cfg.Names, n, nil)
	return s, nil
}

func names(custom []string, n int, defaults []string) []string {
	out := make([]string, n)
	for i := range out {
		switch {
		case i < len(custom) && strings.TrimSpace(custom[i]) != "":
			out[i] = strings.TrimSpace(custom[i])
		case i < len(defaults):
			out[i] = defaults[i]
		default:
			out[i] = fmt.Sprintf("Player %d", i+1)
		}
	}
	return out
}

// Ready reports whether the current player may guess.
func (s *Sequencer) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pending
}

// AfterGuess advances the rotation after a non-winning guess.
func (s *Sequencer) AfterGuess(won bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if won || s.setter {
		return
	}
	total := len(s.players)
	if s.current >= total {
		s.current = 1
	} else {
		s.current++
	}
	s.pending = true
}

// Acknowledge dismisses the hand-off interstitial.
func (s *Sequencer) Acknowledge() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Players:         append([]string(nil), s.players...),
		Current:         s.current,
		CurrentName:     s.players[s.current-1],
		AwaitingHandoff: s.pending,
		Setter:          s.setter,
	}
}
