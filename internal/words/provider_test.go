package words

import (
	"context"
	"errors"
	"testing"

	"github.com/robalobadob/wordheat/internal/oracle"
)

type stubGen struct {
	word  string
	err   error
	calls int
	last  oracle.WordRequest
}

func (g *stubGen) GenerateWord(_ context.Context, req oracle.WordRequest) (string, error) {
	g.calls++
	g.last = req
	return g.word, g.err
}

type memCache struct{ words map[string]string }

func (c *memCache) SeedWord(_ context.Context, date, lang string) (string, error) {
	return c.words[date+"/"+lang], nil
}

func (c *memCache) SaveSeedWord(_ context.Context, date, lang, word string) (string, error) {
	k := date + "/" + lang
	if w, ok := c.words[k]; ok {
		return w, nil
	}
	c.words[k] = word
	return word, nil
}

type stubChallenges map[string]string

func (s stubChallenges) ChallengeWord(_ context.Context, id string) (string, bool, error) {
	w, ok := s[id]
	return w, ok, nil
}

func TestObtainRandomFallsBackToApple(t *testing.T) {
	p := NewProvider(&stubGen{err: oracle.ErrUnavailable}, nil, nil, "salt")
	got, err := p.Obtain(context.Background(), Request{Source: SourceRandom})
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	if got.Word != "apple" || !got.Fallback {
		t.Fatalf("got %+v, want apple fallback", got)
	}
}

func TestObtainCategoryMapsPresetIDs(t *testing.T) {
	g := &stubGen{word: " Spatula "}
	p := NewProvider(g, nil, nil, "")
	got, err := p.Obtain(context.Background(), Request{Source: SourceCategory, Category: "food"})
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	if got.Word != "spatula" {
		t.Fatalf("word = %q", got.Word)
	}
	if g.last.Category != "Food & Cooking" {
		t.Fatalf("category sent = %q", g.last.Category)
	}
}

func TestObtainSeededIsCachedPerDate(t *testing.T) {
	cache := &memCache{words: map[string]string{}}
	g := &stubGen{word: "ocean"}
	p := NewProvider(g, cache, nil, "")

	first, _ := p.Obtain(context.Background(), Request{Source: SourceSeeded, Seed: "2026-10-14"})
	g.word = "forest"
	second, _ := p.Obtain(context.Background(), Request{Source: SourceSeeded, Seed: "2026-10-14"})

	if first.Word != "ocean" || second.Word != "ocean" {
		t.Fatalf("got %q then %q, want ocean twice", first.Word, second.Word)
	}
	if g.calls != 1 {
		t.Fatalf("generator called %d times, want 1", g.calls)
	}
	if second.Seed != "2026-10-14" {
		t.Fatalf("seed = %q", second.Seed)
	}
}

func TestObtainSeededFallbackIsDeterministic(t *testing.T) {
	a := NewProvider(&stubGen{err: errors.New("down")}, nil, nil, "salt")
	b := NewProvider(nil, nil, nil, "salt")
	x, _ := a.Obtain(context.Background(), Request{Source: SourceSeeded, Seed: "2026-01-01"})
	y, _ := b.Obtain(context.Background(), Request{Source: SourceSeeded, Seed: "2026-01-01"})
	if x.Word == "" || x.Word != y.Word {
		t.Fatalf("fallbacks differ: %q vs %q", x.Word, y.Word)
	}
	if !x.Fallback {
		t.Fatalf("expected Fallback flag")
	}
}

func TestPresetRoundTripAndErrors(t *testing.T) {
	p := NewProvider(nil, nil, nil, "")
	got, err := p.Obtain(context.Background(), Request{Source: SourcePreset, Preset: EncodePreset("Volcano")})
	if err != nil || got.Word != "volcano" {
		t.Fatalf("got %+v, %v", got, err)
	}
	for _, bad := range []string{"", "%%%", EncodePreset("two words")} {
		if _, err := DecodePreset(bad); !errors.Is(err, ErrBadPreset) {
			t.Errorf("DecodePreset(%q) err = %v, want ErrBadPreset", bad, err)
		}
	}
}

func TestObtainChallenge(t *testing.T) {
	p := NewProvider(nil, nil, stubChallenges{"c1": "Tiger"}, "")
	got, err := p.Obtain(context.Background(), Request{Source: SourceChallenge, ChallengeID: "c1"})
	if err != nil || got.Word != "tiger" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if _, err := p.Obtain(context.Background(), Request{Source: SourceChallenge, ChallengeID: "nope"}); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("err = %v, want ErrChallengeNotFound", err)
	}
}

func TestCleanWord(t *testing.T) {
	cases := map[string]bool{"Apple": true, "# comment": false, "a": false, "ice cream": false, "café": true, "r2d2": false}
	for in, want := range cases {
		if _, ok := cleanWord(in); ok != want {
			t.Errorf("cleanWord(%q) ok = %v, want %v", in, ok, want)
		}
	}
}
