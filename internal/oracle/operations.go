// internal/oracle/operations.go
//
// Typed oracle calls built on the chat client.
// Responsibilities:
//   - Word generation (random, category, daily seed) and similarity scoring.
//   - Hints, compass clues, related words, recaps and definitions.
package oracle

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const systemPrompt = "You are the word engine for a semantic word-guessing game. Follow the output format exactly."

// Similarity is the oracle's judgement of how close a guess is to the target.
type Similarity struct {
	Score int
	Rank  int
}

// WordRequest describes the secret word to generate.
type WordRequest struct {
	Language string
	Seed     string // date key for the shared daily puzzle
	Category string // preset category id or free-form topic
}

// GenerateWord asks for a single lowercase noun.
func (c *Client) GenerateWord(ctx context.Context, req WordRequest) (string, error) {
	var prompt string
	switch {
	case req.Seed != "":
		prompt = fmt.Sprintf(`Pick the "Daily Word" for the date seed %q in %s. It must be a common, simple, singular noun. `+
			`Answer as JSON: {"word": "<word>"}.`, req.Seed, req.Language)
	case req.Category != "" && req.Category != "common":
		prompt = fmt.Sprintf(`Pick one specific, well-known noun in %s strongly tied to the theme %q `+
			`(for "Cooking" something like "spatula"). One word, no spaces, lowercase. Answer as JSON: {"word": "<word>"}.`,
			req.Language, req.Category)
	default:
		prompt = fmt.Sprintf(`Pick a random, common, simple singular noun in %s for a word guessing game. `+
			`Avoid proper nouns. Answer as JSON: {"word": "<word>"}.`, req.Language)
	}
	var out struct {
		Word string `json:"word"`
	}
	if err := c.completeJSON(ctx, prompt, 1.0, &out); err != nil {
		return "", err
	}
	word := strings.ToLower(strings.TrimSpace(out.Word))
	if word == "" || strings.ContainsAny(word, " \t\n") {
		return "", fmt.Errorf("%w: unusable word %q", ErrMalformed, out.Word)
	}
	return word, nil
}

// Similarity scores guess against target on a 0–100 scale with a closeness rank.
func (c *Client) Similarity(ctx context.Context, target, guess, language string) (Similarity, error) {
	prompt := fmt.Sprintf(`Rate the semantic similarity between the target word %q and the guess %q in %s.
Score 0 to 100:
- 100: the exact word or a perfect synonym
- 90-99: very close synonym or direct type-of relation
- 70-89: strong association (same category, frequent shared context)
- 40-69: loose association
- 0-39: unrelated
Also estimate the closeness rank (1 is the word itself, 1000 is far away).
Answer as JSON: {"score": <number>, "estimatedRank": <integer>}.`, target, guess, language)
	var out struct {
		Score *float64 `json:"score"`
		Rank  *float64 `json:"estimatedRank"`
	}
	if err := c.completeJSON(ctx, prompt, 0, &out); err != nil {
		return Similarity{}, err
	}
	if out.Score == nil || math.IsNaN(*out.Score) {
		return Similarity{}, fmt.Errorf("%w: missing score", ErrMalformed)
	}
	sim := Similarity{Score: int(math.Round(*out.Score)), Rank: 9999}
	if out.Rank != nil && *out.Rank >= 1 {
		sim.Rank = int(*out.Rank)
	}
	return sim, nil
}

// Hint returns a single-word or riddle-sentence clue, avoiding anything in previous.
func (c *Client) Hint(ctx context.Context, target, language, kind string, previous []string) (string, error) {
	avoid := ""
	if len(previous) > 0 {
		avoid = "The player already has these hints; do not repeat their words or information: " + strings.Join(previous, "; ")
	}
	var prompt string
	if kind == "sentence" {
		prompt = fmt.Sprintf(`The player is trying to guess %q in %s.
Write one riddle-style sentence in %s about its function, appearance or context.
Rules: never use the word itself; at most 20 words; make it easier than a one-word hint.
%s`, target, language, language, avoid)
	} else {
		prompt = fmt.Sprintf(`The player is trying to guess %q in %s.
Give ONE related word in %s.
Rules: no direct synonym; no translation of the word; prefer a related concept, an object found with it, or a characteristic. Reply with the word only.
%s`, target, language, language, avoid)
	}
	return c.plain(ctx, prompt, 0.8)
}

// CompassClue returns a word that should land in the Warm band (roughly 50–70), never Hot.
func (c *Client) CompassClue(ctx context.Context, target, language string) (string, error) {
	prompt := fmt.Sprintf(`Give one word in %s that is related to %q but is not a synonym.
Its similarity should be moderate, around 50 to 70 out of 100 (warm, not hot). Reply with the word only.`, language, target)
	return c.plain(ctx, prompt, 0.9)
}

// RelatedWords lists five words semantically close to target.
func (c *Client) RelatedWords(ctx context.Context, target, language string) ([]string, error) {
	prompt := fmt.Sprintf(`List 5 common words in %s that are very close in meaning to %q (synonyms or strong associations).
Answer as JSON: {"words": ["...", "..."]}.`, language, target)
	var out struct {
		Words []string `json:"words"`
	}
	if err := c.completeJSON(ctx, prompt, 0.5, &out); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(out.Words))
	for _, w := range out.Words {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// Recap writes a short witty commentary on a finished game.
// history holds the guesses in chronological order, already formatted for display.
func (c *Client) Recap(ctx context.Context, target, language string, history []string) (string, error) {
	prompt := fmt.Sprintf(`The player just found the word %q in %s.
Their guesses in order: %s.
Write a fun, witty two-sentence commentary on their performance (their start, any big jumps, how fast they got there). Address the player as "You".`,
		target, language, strings.Join(history, ", "))
	return c.plain(ctx, prompt, 0.9)
}

// Definition returns a one-sentence dictionary definition.
func (c *Client) Definition(ctx context.Context, word, language string) (string, error) {
	prompt := fmt.Sprintf(`Give a short, one-sentence dictionary definition of %q in %s.`, word, language)
	return c.plain(ctx, prompt, 0.2)
}

func (c *Client) plain(ctx context.Context, prompt string, temperature float64) (string, error) {
	text, err := c.complete(ctx, prompt, false, temperature)
	if err != nil {
		return "", err
	}
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrMalformed)
	}
	return text, nil
}
