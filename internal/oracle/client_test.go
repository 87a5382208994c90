package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatReply(content string) []byte {
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func newTestClient(t *testing.T, h http.HandlerFunc, retries int) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(Config{APIKey: "test", BaseURL: ts.URL, Retries: retries, Backoff: time.Millisecond})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "plain", in: `{"word":"ocean"}`, want: `{"word":"ocean"}`},
		{name: "fenced json", in: "```json\n{\"word\":\"ocean\"}\n```", want: `{"word":"ocean"}`},
		{name: "fenced bare", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose wrapper", in: `Sure! {"score": 42} hope that helps`, want: `{"score": 42}`},
		{name: "empty", in: "", want: "{}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSimilarityParsesScoreAndRank(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write(chatReply("```json\n{\"score\": 91.6, \"estimatedRank\": 3}\n```"))
	}, 0)
	sim, err := c.Similarity(context.Background(), "ocean", "sea", "English")
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if sim.Score != 92 || sim.Rank != 3 {
		t.Fatalf("unexpected similarity %+v", sim)
	}
}

func TestSimilarityMissingScoreIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(`{"estimatedRank": 3}`))
	}, 0)
	_, err := c.Similarity(context.Background(), "ocean", "sea", "English")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(chatReply(`{"word": "Lantern"}`))
	}, 2)
	word, err := c.GenerateWord(context.Background(), WordRequest{Language: "English"})
	if err != nil {
		t.Fatalf("GenerateWord: %v", err)
	}
	if word != "lantern" {
		t.Fatalf("expected lowercased word, got %q", word)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}, 3)
	_, err := c.Hint(context.Background(), "ocean", "English", "word", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single call, got %d", got)
	}
}

func TestMissingKeyIsUnavailable(t *testing.T) {
	c := New(Config{})
	if _, err := c.Recap(context.Background(), "ocean", "English", nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRelatedWordsDropsBlanks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(`{"words": ["sea", " ", "wave"]}`))
	}, 0)
	words, err := c.RelatedWords(context.Background(), "ocean", "English")
	if err != nil {
		t.Fatalf("RelatedWords: %v", err)
	}
	if len(words) != 2 || words[0] != "sea" || words[1] != "wave" {
		t.Fatalf("unexpected words %v", words)
	}
}
