// internal/heat/heat.go
//
// Temperature bands for similarity scores.
// Responsibilities:
//   - Map a 0–100 score to one of six temperature bands.
//   - Normalize words before any comparison (lowercase, trimmed).
//
// The band table drives audio/visual feedback and hard-mode score hiding,
// so the boundaries (20/45/70/90/100) must stay exact.
package heat

import "strings"

// Temperature is the display band for a score.
type Temperature string

const (
	Freezing Temperature = "Freezing"
	Cold     Temperature = "Cold"
	Warm     Temperature = "Warm"
	Hot      Temperature = "Hot"
	Burning  Temperature = "Burning"
	Solved   Temperature = "Solved"
)

// For returns the band for score. Out-of-range scores are clamped.
func For(score int) Temperature {
	score = Clamp(score)
	switch {
	case score == 100:
		return Solved
	case score >= 90:
		return Burning
	case score >= 70:
		return Hot
	case score >= 45:
		return Warm
	case score >= 20:
		return Cold
	default:
		return Freezing
	}
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Normalize lowercases and trims a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Emoji is the share-card glyph for a band.
func Emoji(t Temperature) string {
	switch t {
	case Solved:
		return "🏆"
	case Burning:
		return "🔥"
	case Hot:
		return "☀️"
	case Warm:
		return "🌤️"
	case Cold:
		return "❄️"
	default:
		return "🧊"
	}
}
