// internal/words/provider.go
//
// Target word provider.
// Responsibilities:
//   - Resolve the secret word from the oracle, the daily seed, an invite
//     preset or a stored challenge.
//   - Persist the first daily word per language so every player shares it.
//   - Fall back to the embedded list when the oracle fails.
package words

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/daily"
	"github.com/robalobadob/wordheat/internal/heat"
	"github.com/robalobadob/wordheat/internal/oracle"
)

var (
	ErrBadPreset         = errors.New("words: preset word could not be decoded")
	ErrChallengeNotFound = errors.New("words: challenge not found")
	ErrUnknownSource     = errors.New("words: unknown source")
)

// Source selects how the secret word is obtained.
type Source string

const (
	SourceRandom    Source = "random"
	SourceCategory  Source = "category"
	SourceSeeded    Source = "seeded"
	SourcePreset    Source = "preset"
	SourceChallenge Source = "challenge"
)

// Categories maps the preset category ids to the topic sent to the oracle.
// Anything else in Request.Category is treated as a free-form topic.
var Categories = map[string]string{
	"common":  "common",
	"animals": "Animals",
	"food":    "Food & Cooking",
	"nature":  "Nature",
	"tech":    "Technology",
	"sports":  "Sports",
	"music":   "Music",
	"travel":  "Travel & Places",
}

// Request is the parameter bag for Obtain.
type Request struct {
	Source      Source
	Language    string
	Category    string // category id or topic (SourceCategory)
	Seed        string // date key (SourceSeeded)
	Preset      string // base64 word from an invite (SourcePreset)
	ChallengeID string // SourceChallenge
}

// Target is the resolved secret word.
type Target struct {
	Word     string
	Seed     string
	Fallback bool // the oracle failed and a fixed word was used
}

// Generator produces fresh words.
type Generator interface {
	GenerateWord(ctx context.Context, req oracle.WordRequest) (string, error)
}

// SeedCache pins one word per (date, language).
type SeedCache interface {
	SeedWord(ctx context.Context, date, language string) (string, error)
	SaveSeedWord(ctx context.Context, date, language, word string) (string, error)
}

// ChallengeSource looks up the word of a persisted challenge. ok is false when
// the challenge does not exist.
type ChallengeSource interface {
	ChallengeWord(ctx context.Context, id string) (word string, ok bool, err error)
}

// Provider resolves the secret word for a session.
type Provider struct {
	gen        Generator
	cache      SeedCache
	challenges ChallengeSource
	salt       string
}

// NewProvider wires the collaborators. cache and challenges may be nil.
func NewProvider(gen Generator, cache SeedCache, challenges ChallengeSource, salt string) *Provider {
	return &Provider{gen: gen, cache: cache, challenges: challenges, salt: salt}
}

// Obtain returns a lowercase, trimmed target. Oracle failures never surface
// here: a fallback word is substituted instead.
func (p *Provider) Obtain(ctx context.Context, req Request) (Target, error) {
	if req.Language == "" {
		req.Language = "English"
	}
	switch req.Source {
	case SourceRandom, "":
		return p.generate(ctx, oracle.WordRequest{Language: req.Language}), nil
	case SourceCategory:
		topic := req.Category
		if t, ok := Categories[strings.ToLower(topic)]; ok {
			topic = t
		}
		return p.generate(ctx, oracle.WordRequest{Language: req.Language, Category: topic}), nil
	case SourceSeeded:
		return p.seeded(ctx, req.Seed, req.Language), nil
	case SourcePreset:
		word, err := DecodePreset(req.Preset)
		if err != nil {
			return Target{}, err
		}
		return Target{Word: word}, nil
	case SourceChallenge:
		return p.challenge(ctx, req.ChallengeID)
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
	}
}

func (p *Provider) generate(ctx context.Context, req oracle.WordRequest) Target {
	if p.gen == nil {
		return Target{Word: DefaultWord, Fallback: true}
	}
	word, err := p.gen.GenerateWord(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("category", req.Category).Msg("word generation failed, using fallback")
		return Target{Word: DefaultWord, Fallback: true}
	}
	return Target{Word: heat.Normalize(word)}
}

func (p *Provider) seeded(ctx context.Context, seed, language string) Target {
	if p.cache != nil {
		cached, err := p.cache.SeedWord(ctx, seed, language)
		if err != nil {
			log.Warn().Err(err).Str("seed", seed).Msg("daily word lookup failed")
		} else if cached != "" {
			return Target{Word: cached, Seed: seed}
		}
	}

	t := Target{Seed: seed}
	var err error
	if p.gen != nil {
		var w string
		if w, err = p.gen.GenerateWord(ctx, oracle.WordRequest{Language: language, Seed: seed}); err == nil {
			t.Word = heat.Normalize(w)
		}
	}
	if t.Word == "" {
		if err != nil {
			log.Warn().Err(err).Str("seed", seed).Msg("daily word generation failed, using seeded fallback")
		}
		t.Word = SeededFallback(seed, p.salt)
		t.Fallback = true
	}

	if p.cache != nil {
		stored, err := p.cache.SaveSeedWord(ctx, seed, language, t.Word)
		if err != nil {
			log.Warn().Err(err).Str("seed", seed).Msg("daily word save failed")
		} else if stored != "" && stored != t.Word {
			// Someone else pinned the word first.
			return Target{Word: stored, Seed: seed}
		}
	}
	return t
}

func (p *Provider) challenge(ctx context.Context, id string) (Target, error) {
	if p.challenges == nil || id == "" {
		return Target{}, ErrChallengeNotFound
	}
	word, ok, err := p.challenges.ChallengeWord(ctx, id)
	if err != nil {
		return Target{}, fmt.Errorf("load challenge %s: %w", id, err)
	}
	if !ok {
		return Target{}, ErrChallengeNotFound
	}
	return Target{Word: heat.Normalize(word)}, nil
}

// SeededFallback picks from the fallback list deterministically for seed.
func SeededFallback(seed, salt string) string {
	list := Fallback()
	if len(list) == 0 {
		return DefaultWord
	}
	return list[daily.WordIndex(seed, salt, len(list))]
}

// EncodePreset encodes a word for an invite link.
func EncodePreset(word string) string {
	return base64.StdEncoding.EncodeToString([]byte(heat.Normalize(word)))
}

// DecodePreset reverses EncodePreset. URL-safe and unpadded forms are accepted
// since links are often re-encoded by chat clients.
func DecodePreset(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrBadPreset
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		raw, err := enc.DecodeString(s)
		if err != nil {
			continue
		}
		if word, ok := cleanWord(string(raw)); ok {
			return word, nil
		}
		return "", ErrBadPreset
	}
	return "", ErrBadPreset
}
