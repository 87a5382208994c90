package game

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/heat"
	"github.com/robalobadob/wordheat/internal/party"
)

// View is a read-only snapshot of a session for clients.
type View struct {
	ID              string         `json:"id"`
	Mode            Mode           `json:"mode"`
	Status          Status         `json:"status"`
	Language        string         `json:"language"`
	Seed            string         `json:"seed,omitempty"`
	Guesses         []Guess        `json:"guesses"`
	Sorted          []Guess        `json:"sorted"`
	BestScore       int            `json:"bestScore"`
	Hints           []economy.Hint `json:"hints"`
	RevealedLetters int            `json:"revealedLetters"`
	Masked          string         `json:"masked"`
	Remaining       int            `json:"remaining,omitempty"`
	SurrenderArmed  *time.Time     `json:"surrenderArmedUntil,omitempty"`
	Conceded        bool           `json:"conceded,omitempty"`
	ShowTutorial    bool           `json:"showTutorial,omitempty"`
	Party           *party.State   `json:"party,omitempty"`
	Target          string         `json:"target,omitempty"`
	Recap           string         `json:"recap,omitempty"`
	Related         []string       `json:"related,omitempty"`
	Definition      string         `json:"definition,omitempty"`
	Share           string         `json:"share,omitempty"`
	Hard            bool           `json:"hard,omitempty"`
}

// Snapshot copies the session state. The target is only exposed once the
// session is over.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	v := View{
		ID:              s.ID,
		Mode:            s.mode,
		Status:          s.status,
		Language:        s.language,
		Seed:            s.seed,
		Guesses:         slices.Clone(s.guesses),
		Sorted:          SortByScore(s.guesses),
		BestScore:       s.best,
		Hints:           slices.Clone(s.hints),
		RevealedLetters: s.revealed,
		Masked:          Mask(s.target, s.revealed),
		Remaining:       s.remaining,
		Conceded:        s.conceded,
		ShowTutorial:    s.showTutorial,
		Recap:           s.recap,
		Related:         slices.Clone(s.related),
		Definition:      s.definition,
		Hard:            s.hard,
	}
	if until := s.surrender.Until(); s.surrender.Armed(s.deps.Clock()) {
		v.SurrenderArmed = &until
	}
	if s.status != StatusPlaying {
		v.Target = s.target
		v.Share = shareText(s.mode, s.seed, s.status, s.guesses)
	} else if s.hard {
		// Log order while scores are hidden.
		v.Guesses = lo.Map(v.Guesses, func(g Guess, _ int) Guess { return redact(g) })
		v.Sorted = slices.Clone(v.Guesses)
		v.BestScore = 0
	}
	s.mu.Unlock()

	if s.deps.Turns != nil {
		st := s.deps.Turns.State()
		v.Party = &st
	}
	if v.Guesses == nil {
		v.Guesses = []Guess{}
	}
	if v.Hints == nil {
		v.Hints = []economy.Hint{}
	}
	return v
}

// SortByScore returns the guesses hottest first, ties in guess order. The
// log itself is never reordered.
func SortByScore(gs []Guess) []Guess {
	out := slices.Clone(gs)
	slices.SortStableFunc(out, func(a, b Guess) int { return cmp.Compare(b.Score, a.Score) })
	if out == nil {
		out = []Guess{}
	}
	return out
}

func redact(g Guess) Guess {
	g.Score, g.Rank = 0, 0
	return g
}

// Mask shows the first revealed letters of word and hides the rest.
func Mask(word string, revealed int) string {
	r := []rune(word)
	revealed = min(max(revealed, 0), len(r))
	return string(r[:revealed]) + strings.Repeat("_", len(r)-revealed)
}

func shareText(mode Mode, seed string, status Status, gs []Guess) string {
	title := "WordHeat " + string(mode)
	if seed != "" {
		title = "WordHeat daily " + seed
	}
	result := "gave up"
	if status == StatusWon {
		result = fmt.Sprintf("solved in %d", len(gs))
	}
	trail := strings.Join(lo.Map(gs, func(g Guess, _ int) string { return heat.Emoji(g.Temperature) }), "")
	return fmt.Sprintf("%s: %s\n%s", title, result, trail)
}
