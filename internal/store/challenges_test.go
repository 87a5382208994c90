package store

import (
	"context"
	"testing"
	"time"

	"github.com/robalobadob/wordheat/internal/challenge"
)

func TestChallengeCountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	rec, err := cs.Create(ctx, challenge.NewChallenge{Challenger: "ada", Opponent: "bob", Word: "ocean"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	finished := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		count challenge.Count
	}{
		{"guesses", challenge.GuessCount(7)},
		{"surrendered", challenge.Count{Kind: challenge.Surrendered}},
		{"spectating", challenge.Count{Kind: challenge.Spectating}},
		{"unset", challenge.Count{}},
	}
	for _, tc := range cases {
		got, err := cs.UpdateProgress(ctx, rec.ID, challenge.Challenger, challenge.Progress{
			Status: challenge.PartyPlaying, Count: tc.count, FinishedAt: &finished,
		})
		if err != nil {
			t.Fatalf("%s: update: %v", tc.name, err)
		}
		if got.Challenger.Count != tc.count {
			t.Fatalf("%s: count = %+v, want %+v", tc.name, got.Challenger.Count, tc.count)
		}
		if got.Challenger.FinishedAt == nil || !got.Challenger.FinishedAt.Equal(finished) {
			t.Fatalf("%s: finishedAt = %v", tc.name, got.Challenger.FinishedAt)
		}
		if got.Opponent.Count != (challenge.Count{}) {
			t.Fatalf("%s: opponent columns changed: %+v", tc.name, got.Opponent)
		}
	}
}

func TestFinishedChallengeSideIsFinal(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	rec, err := cs.Create(ctx, challenge.NewChallenge{Challenger: "ada", Word: "ocean"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done, err := cs.UpdateProgress(ctx, rec.ID, challenge.Challenger, challenge.Progress{
		Status: challenge.PartyFinished, Count: challenge.GuessCount(7),
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	again, err := cs.UpdateProgress(ctx, rec.ID, challenge.Challenger, challenge.Progress{
		Status: challenge.PartyFinished, Count: challenge.GuessCount(1),
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if again.Challenger.Count != challenge.GuessCount(7) || again.Version != done.Version {
		t.Fatalf("finished side rewritten: %+v", again.Challenger)
	}
}

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	rec, err := cs.Create(ctx, challenge.NewChallenge{Challenger: "ada", Word: "ocean", Seed: "s1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Opponent.Status != challenge.PartyWaiting || rec.Version != 1 {
		t.Fatalf("new record = %+v", rec)
	}

	updates, cancel := cs.Subscribe(rec.ID)
	defer cancel()

	acc, err := cs.Accept(ctx, rec.ID, "bob")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if acc.Status != challenge.StatusAccepted || acc.Opponent.Name != "bob" ||
		acc.Opponent.Status != challenge.PartyPlaying || acc.Opponent.StartedAt == nil || acc.Version != 2 {
		t.Fatalf("accepted record = %+v", acc)
	}
	select {
	case got := <-updates:
		if got.Version != 2 {
			t.Fatalf("published version = %d", got.Version)
		}
	case <-time.After(time.Second):
		t.Fatalf("accept was not published")
	}

	// A second accept is a no-op.
	again, _ := cs.Accept(ctx, rec.ID, "carol")
	if again.Opponent.Name != "bob" || again.Version != 2 {
		t.Fatalf("second accept changed the record: %+v", again)
	}

	won, _ := cs.SetWinner(ctx, rec.ID, "bob")
	if won.Winner != "bob" || won.Status != challenge.StatusCompleted {
		t.Fatalf("winner = %+v", won)
	}
	late, _ := cs.SetWinner(ctx, rec.ID, "ada")
	if late.Winner != "bob" || late.Version != won.Version {
		t.Fatalf("winner was overwritten: %+v", late)
	}

	word, ok, err := cs.ChallengeWord(ctx, rec.ID)
	if err != nil || !ok || word != "ocean" {
		t.Fatalf("ChallengeWord = %q %v %v", word, ok, err)
	}
}

func TestChallengeNotFound(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	if _, err := cs.Get(ctx, "missing"); err != challenge.ErrNotFound {
		t.Fatalf("Get err = %v", err)
	}
	if _, err := cs.Accept(ctx, "missing", "bob"); err != challenge.ErrNotFound {
		t.Fatalf("Accept err = %v", err)
	}
	if _, ok, err := cs.ChallengeWord(ctx, "missing"); ok || err != nil {
		t.Fatalf("ChallengeWord ok=%v err=%v", ok, err)
	}
}

func TestSetterChallengeStartsSpectating(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	rec, _ := cs.Create(ctx, challenge.NewChallenge{Challenger: "ada", Opponent: "bob", Word: "ocean", Setter: true})
	got, err := cs.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Challenger.Count.Kind != challenge.Spectating || got.Challenger.Status != challenge.PartyFinished {
		t.Fatalf("setter side = %+v", got.Challenger)
	}
	if got.Opponent.Status != challenge.PartyInvited {
		t.Fatalf("opponent side = %+v", got.Opponent)
	}
}

// The SQL store drives the same client code as the in-memory one.
func TestClientOverSQLStore(t *testing.T) {
	ctx := context.Background()
	cs := NewChallenges(openTestDB(t))
	rec, _ := cs.Create(ctx, challenge.NewChallenge{Challenger: "ada", Opponent: "bob", Word: "ocean"})

	bob, err := challenge.Join(ctx, cs, rec.ID, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	defer bob.Close()
	bob.Surrender()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-bob.Events():
			if ev.Kind == challenge.EventResult {
				if ev.Winner != "ada" || ev.Won {
					t.Fatalf("result = %+v", ev)
				}
				return
			}
		case <-deadline:
			t.Fatalf("no result after surrender")
		}
	}
}
