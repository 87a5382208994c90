// internal/scoring/gateway.go
//
// Scoring Gateway between a game session and the similarity oracle.
// Responsibilities:
//   - Short-circuit exact matches to {100, 1} without touching the oracle.
//   - Delegate everything else and normalize the reply (clamp score, default rank).
//   - Return oracle failures to the caller; Fallback is the agreed substitute.
package scoring

import (
	"context"
	"fmt"

	"github.com/robalobadob/wordheat/internal/heat"
	"github.com/robalobadob/wordheat/internal/oracle"
)

// Fallback is what a session records when the oracle cannot score a guess:
// indistinguishable from a very poor guess.
var Fallback = oracle.Similarity{Score: 0, Rank: 10000}

// Oracle is the similarity capability the gateway needs.
type Oracle interface {
	Similarity(ctx context.Context, target, guess, language string) (oracle.Similarity, error)
}

// Gateway scores guesses.
type Gateway struct {
	oracle Oracle
}

// New returns a Gateway backed by o.
func New(o Oracle) *Gateway {
	return &Gateway{oracle: o}
}

// Score returns the similarity of guess to target. An exact match never errors.
func (g *Gateway) Score(ctx context.Context, target, guess, language string) (oracle.Similarity, error) {
	t, w := heat.Normalize(target), heat.Normalize(guess)
	if t == w {
		return oracle.Similarity{Score: 100, Rank: 1}, nil
	}
	if g.oracle == nil {
		return oracle.Similarity{}, fmt.Errorf("score %q: %w", w, oracle.ErrUnavailable)
	}
	sim, err := g.oracle.Similarity(ctx, t, w, language)
	if err != nil {
		return oracle.Similarity{}, fmt.Errorf("score %q: %w", w, err)
	}
	sim.Score = heat.Clamp(sim.Score)
	if sim.Rank < 1 {
		sim.Rank = 9999
	}
	return sim, nil
}
