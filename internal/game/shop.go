// internal/game/shop.go
//
// Session side of the shop: one purchase in flight at a time, and effects
// applied only to the round they were bought for.
package game

import (
	"context"

	"github.com/samber/lo"

	"github.com/robalobadob/wordheat/internal/economy"
)

// PurchaseHint buys a hint for the current target. Previous hint texts are
// passed on so the oracle does not repeat itself.
func (s *Session) PurchaseHint(ctx context.Context, kind economy.HintKind) (economy.Hint, error) {
	in, gen, err := s.beginShopping()
	if err != nil {
		return economy.Hint{}, err
	}
	h, err := s.deps.Shop.PurchaseHint(ctx, kind, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.shopping = false
		if err == nil {
			s.hints = append(s.hints, h)
		}
	}
	return h, err
}

// UsePowerup consumes a power-up and applies its effect to the session.
func (s *Session) UsePowerup(ctx context.Context, id economy.Item) (economy.Effect, error) {
	in, gen, err := s.beginShopping()
	if err != nil {
		return economy.Effect{}, err
	}
	eff, err := s.deps.Shop.UsePowerup(ctx, id, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return eff, err
	}
	s.shopping = false
	if err != nil {
		return eff, err
	}
	switch eff.Kind {
	case economy.EffectRevealLetter:
		s.revealed = min(max(s.revealed, eff.RevealedLetters), len([]rune(s.target)))
	case economy.EffectCompass:
		s.hints = append(s.hints, economy.Hint{Text: eff.Clue, Kind: economy.HintCompass})
	case economy.EffectTimeExtension:
		if s.mode == ModeBlitz && s.status == StatusPlaying {
			s.remaining += eff.ExtraSeconds
		}
	}
	return eff, nil
}

func (s *Session) beginShopping() (economy.Context, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPlaying || s.conceded {
		return economy.Context{}, 0, ErrNotPlaying
	}
	if s.deps.Shop == nil {
		return economy.Context{}, 0, ErrNoShop
	}
	if s.shopping {
		return economy.Context{}, 0, ErrBusy
	}
	s.shopping = true
	return economy.Context{
		Target:          s.target,
		Language:        s.language,
		Level:           s.level,
		Blitz:           s.mode == ModeBlitz,
		RevealedLetters: s.revealed,
		PreviousHints:   lo.Map(s.hints, func(h economy.Hint, _ int) string { return h.Text }),
	}, s.gen, nil
}
