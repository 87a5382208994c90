package store

import (
	"context"
	"testing"

	"github.com/robalobadob/wordheat/internal/daily"
)

func TestSeedWordFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	d := daily.NewStore(openTestDB(t))

	if w, err := d.SeedWord(ctx, "2026-10-14", "en"); err != nil || w != "" {
		t.Fatalf("empty cache = %q, %v", w, err)
	}
	first, _ := d.SaveSeedWord(ctx, "2026-10-14", "en", "ocean")
	second, _ := d.SaveSeedWord(ctx, "2026-10-14", "en", "forest")
	if first != "ocean" || second != "ocean" {
		t.Fatalf("saved %q then %q", first, second)
	}
	other, _ := d.SaveSeedWord(ctx, "2026-10-14", "de", "wald")
	if other != "wald" {
		t.Fatalf("languages share a cache entry: %q", other)
	}
}

func TestDailyLeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	d := daily.NewStore(openTestDB(t))

	for _, r := range []daily.Result{
		{Username: "ada", Date: "2026-10-14", Guesses: 6},
		{Username: "bob", Date: "2026-10-14", Guesses: 3},
		{Username: "cy", Date: "2026-10-14", Guesses: 9},
		{Username: "bob", Date: "2026-10-14", Guesses: 1}, // second solve ignored
		{Username: "dee", Date: "2026-10-13", Guesses: 1},
	} {
		if err := d.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	board, err := d.Leaderboard(ctx, "2026-10-14", 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Username != "bob" || board[0].Guesses != 3 || board[1].Username != "ada" {
		t.Fatalf("leaderboard = %+v", board)
	}
}
