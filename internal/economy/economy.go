// internal/economy/economy.go
//
// Hint and power-up purchases against a player's wallet.
// Responsibilities:
//   - Charge for hints before asking the oracle; fall back to a filler text.
//   - Check power-up applicability before spending, auto-buy when none is held.
package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrInsufficientFunds   = errors.New("economy: insufficient funds")
	ErrNotApplicableInMode = errors.New("economy: not applicable in this mode")
	ErrUnknownItem         = errors.New("economy: unknown item")
)

const (
	fillerHint   = "Try thinking about nature."
	fallbackClue = "thing"
	allRevealed  = "All letters are already revealed."
)

// Wallet is the slice of the player profile the economy mutates.
type Wallet interface {
	// SpendCoins debits n coins if the balance allows it.
	SpendCoins(ctx context.Context, n int) (bool, error)
	// BuyItem debits price and adds one item in a single step.
	BuyItem(ctx context.Context, item string, price int) (bool, error)
	// ConsumeItem removes one item if any is held.
	ConsumeItem(ctx context.Context, item string) (bool, error)
}

// Clues produces the oracle-backed texts for hints and compass clues.
type Clues interface {
	Hint(ctx context.Context, target, language, kind string, previous []string) (string, error)
	CompassClue(ctx context.Context, target, language string) (string, error)
}

// Context is what the economy needs to know about the session making a purchase.
type Context struct {
	Target          string
	Language        string
	Level           int
	Blitz           bool
	RevealedLetters int
	PreviousHints   []string
}

// Hint is a purchased clue.
type Hint struct {
	Text string   `json:"text"`
	Kind HintKind `json:"kind"`
	Cost int      `json:"cost"`
}

// EffectKind tells the session how to apply a power-up.
type EffectKind string

const (
	EffectRevealLetter  EffectKind = "reveal_letter"
	EffectCompass       EffectKind = "compass"
	EffectTimeExtension EffectKind = "time_extension"
	EffectNotice        EffectKind = "notice"
)

// Effect is the outcome of UsePowerup.
type Effect struct {
	Item            Item       `json:"item"`
	Kind            EffectKind `json:"kind"`
	RevealedLetters int        `json:"revealedLetters,omitempty"`
	Clue            string     `json:"clue,omitempty"`
	ExtraSeconds    int        `json:"extraSeconds,omitempty"`
	Notice          string     `json:"notice,omitempty"`
	AutoBought      bool       `json:"autoBought,omitempty"`
}

// Economy resolves spend-and-reveal transactions.
type Economy struct {
	wallet Wallet
	clues  Clues
}

func New(w Wallet, c Clues) *Economy {
	return &Economy{wallet: w, clues: c}
}

// PurchaseHint charges for a hint and then asks the oracle for it. The charge
// stands even if the oracle fails; a filler hint is returned instead.
func (e *Economy) PurchaseHint(ctx context.Context, kind HintKind, in Context) (Hint, error) {
	if kind != HintWord && kind != HintSentence {
		return Hint{}, fmt.Errorf("%w: hint kind %q", ErrUnknownItem, kind)
	}
	cost := HintCost(kind, in.Level)
	ok, err := e.wallet.SpendCoins(ctx, cost)
	if err != nil {
		return Hint{}, fmt.Errorf("spend %d coins: %w", cost, err)
	}
	if !ok {
		return Hint{}, ErrInsufficientFunds
	}

	h := Hint{Kind: kind, Cost: cost, Text: fillerHint}
	if e.clues == nil {
		return h, nil
	}
	text, err := e.clues.Hint(ctx, in.Target, in.Language, string(kind), in.PreviousHints)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("hint generation failed, using filler")
		return h, nil
	}
	h.Text = text
	return h, nil
}

// UsePowerup consumes one item, buying it first when none is held.
func (e *Economy) UsePowerup(ctx context.Context, id Item, in Context) (Effect, error) {
	entry, ok := Catalog[id]
	if !ok {
		return Effect{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	// Applicability is settled before anything is spent.
	if id == TimeFreeze && !in.Blitz {
		return Effect{}, ErrNotApplicableInMode
	}
	if id == LetterSpy && in.RevealedLetters >= len([]rune(in.Target)) {
		return Effect{Item: id, Kind: EffectNotice, Notice: allRevealed, RevealedLetters: in.RevealedLetters}, nil
	}

	eff := Effect{Item: id}
	have, err := e.wallet.ConsumeItem(ctx, string(id))
	if err != nil {
		return Effect{}, fmt.Errorf("consume %s: %w", id, err)
	}
	if !have {
		bought, err := e.wallet.BuyItem(ctx, string(id), entry.Price)
		if err != nil {
			return Effect{}, fmt.Errorf("buy %s: %w", id, err)
		}
		if !bought {
			return Effect{}, ErrInsufficientFunds
		}
		if have, err = e.wallet.ConsumeItem(ctx, string(id)); err != nil {
			return Effect{}, fmt.Errorf("consume %s after purchase: %w", id, err)
		}
		if !have {
			return Effect{}, fmt.Errorf("consume %s after purchase: inventory empty", id)
		}
		eff.AutoBought = true
	}

	switch id {
	case LetterSpy:
		eff.Kind = EffectRevealLetter
		eff.RevealedLetters = in.RevealedLetters + 1
	case Compass:
		eff.Kind = EffectCompass
		eff.Clue = fallbackClue
		if e.clues != nil {
			clue, err := e.clues.CompassClue(ctx, in.Target, in.Language)
			if err != nil {
				log.Warn().Err(err).Msg("compass clue failed, using fallback")
			} else {
				eff.Clue = clue
			}
		}
	case TimeFreeze:
		eff.Kind = EffectTimeExtension
		eff.ExtraSeconds = TimeFreezeSeconds
	}
	return eff, nil
}
