// internal/challenge/resolve.go
//
// Winner resolution for a challenge record.
// Responsibilities:
//   - Decide the winner from both party columns, or report the race open.
package challenge

import "time"

// Resolve decides the winner of r from the party columns alone. It is pure,
// so both clients reach the same answer from the same snapshot. ok is false
// while the outcome is still open.
//
//   - A finished party that surrendered loses to the other.
//   - A party that solved first wins if the other was already racing.
//   - When both finished, fewer guesses win; then the earlier finish; then
//     the challenger. A surrender ranks below any solved count.
//   - A spectating setter does not race: the solver's outcome decides.
func Resolve(r Record) (winner string, ok bool) {
	winner, ok = resolve(r.Challenger, r.Opponent)
	if winner == "" {
		// Open challenge nobody has joined yet.
		return "", false
	}
	return winner, ok
}

func resolve(c, o Party) (string, bool) {
	if c.Count.Kind == Spectating {
		return spectated(c, o)
	}
	if o.Count.Kind == Spectating {
		return spectated(o, c)
	}

	switch {
	case c.finished() && o.finished():
		return bothFinished(c, o), true
	case c.finished():
		return oneFinished(c, o)
	case o.finished():
		return oneFinished(o, c)
	}
	return "", false
}

func spectated(setter, solver Party) (string, bool) {
	if !solver.finished() {
		return "", false
	}
	if solver.Count.Solved() {
		return solver.Name, true
	}
	return setter.Name, true
}

func oneFinished(done, other Party) (string, bool) {
	if !done.Count.Solved() {
		return other.Name, true
	}
	if racing(done, other) {
		return done.Name, true
	}
	return "", false
}

// racing reports whether other was already playing when done finished. An
// opponent who joins after the finish plays the same word on their own time.
func racing(done, other Party) bool {
	if other.Status != PartyPlaying {
		return false
	}
	if other.StartedAt == nil || done.FinishedAt == nil {
		return true
	}
	return !other.StartedAt.After(*done.FinishedAt)
}

func bothFinished(c, o Party) string {
	cs, os := !c.Count.Solved(), !o.Count.Solved()
	switch {
	case cs && os:
		// The first to give up loses.
		if earlier(o.FinishedAt, c.FinishedAt) {
			return c.Name
		}
		if earlier(c.FinishedAt, o.FinishedAt) {
			return o.Name
		}
		return c.Name
	case cs:
		return o.Name
	case os:
		return c.Name
	}

	if c.Count.N != o.Count.N {
		if o.Count.N < c.Count.N {
			return o.Name
		}
		return c.Name
	}
	if earlier(o.FinishedAt, c.FinishedAt) {
		return o.Name
	}
	return c.Name
}

// earlier reports a < b, treating a missing time as latest.
func earlier(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.Before(*b)
}
