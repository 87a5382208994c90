package challenge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: t0}
	s := NewMemoryStore()
	s.now = clock.Now
	return s, clock
}

func join(t *testing.T, s Store, clock *fakeClock, id, user string) *Client {
	t.Helper()
	c, err := Join(context.Background(), s, id, user)
	if err != nil {
		t.Fatalf("Join(%s): %v", user, err)
	}
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c
}

func waitEvent(t *testing.T, c *Client, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				t.Fatalf("events closed waiting for %s", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func noMoreResults(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == EventResult {
				t.Fatalf("second result: %+v", ev)
			}
		case <-deadline:
			return
		}
	}
}

func waitRecord(t *testing.T, s Store, id string, cond func(Record) bool) Record {
	t.Helper()
	for i := 0; i < 200; i++ {
		r, err := s.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if cond(r) {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("record condition never met")
	return Record{}
}

func TestAsyncChallengeFewerGuessesWin(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "alice", Opponent: "bob", Word: "ocean"})

	alice := join(t, s, clock, rec.ID, "alice")
	for n := 1; n < 7; n++ {
		clock.Advance(time.Second)
		alice.PushProgress(n, false)
	}
	clock.Advance(time.Second)
	alice.PushProgress(7, true)
	waitRecord(t, s, rec.ID, func(r Record) bool { return r.Challenger.finished() })

	clock.Advance(time.Minute)
	bob := join(t, s, clock, rec.ID, "bob")
	if ev := waitEvent(t, alice, EventAccepted); ev.Opponent != "bob" {
		t.Fatalf("accepted event: %+v", ev)
	}
	for n := 1; n < 5; n++ {
		clock.Advance(time.Second)
		bob.PushProgress(n, false)
	}
	clock.Advance(time.Second)
	bob.PushProgress(5, true)

	if ev := waitEvent(t, alice, EventOpponentFinished); ev.Surrendered || ev.Guesses != 5 {
		t.Fatalf("opponent finished event: %+v", ev)
	}
	ra := waitEvent(t, alice, EventResult)
	rb := waitEvent(t, bob, EventResult)
	if ra.Winner != "bob" || rb.Winner != "bob" || ra.Won || !rb.Won {
		t.Fatalf("results disagree: alice %+v bob %+v", ra, rb)
	}
	noMoreResults(t, alice)
	noMoreResults(t, bob)

	final, _ := s.Get(context.Background(), rec.ID)
	if final.Status != StatusCompleted || final.Winner != "bob" {
		t.Fatalf("final record: %+v", final)
	}
}

func TestSurrenderResolvesImmediately(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "alice", Opponent: "bob", Word: "ocean"})
	alice := join(t, s, clock, rec.ID, "alice")
	bob := join(t, s, clock, rec.ID, "bob")

	alice.PushProgress(2, false)
	clock.Advance(time.Second)
	bob.Surrender()

	if ev := waitEvent(t, alice, EventOpponentFinished); !ev.Surrendered {
		t.Fatalf("expected surrender notice: %+v", ev)
	}
	if ev := waitEvent(t, alice, EventResult); !ev.Won || ev.Winner != "alice" {
		t.Fatalf("alice result: %+v", ev)
	}
	if ev := waitEvent(t, bob, EventResult); ev.Won || ev.Winner != "alice" {
		t.Fatalf("bob result: %+v", ev)
	}
	final, _ := s.Get(context.Background(), rec.ID)
	if final.Challenger.finished() {
		t.Fatalf("challenger should still be playing: %+v", final.Challenger)
	}
}

func TestSetWinnerIsWriteOnce(t *testing.T) {
	s, _ := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "a", Opponent: "b"})
	first, err := s.SetWinner(context.Background(), rec.ID, "a")
	if err != nil {
		t.Fatalf("SetWinner: %v", err)
	}
	second, err := s.SetWinner(context.Background(), rec.ID, "b")
	if err != nil {
		t.Fatalf("second SetWinner should not error: %v", err)
	}
	if second.Winner != "a" || second.Version != first.Version {
		t.Fatalf("winner overwritten: %+v", second)
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "alice", Opponent: "bob"})
	alice := join(t, s, clock, rec.ID, "alice")
	alice.PushProgress(3, false)
	waitRecord(t, s, rec.ID, func(r Record) bool { return r.Challenger.Count.N == 3 })
	time.Sleep(20 * time.Millisecond)

	stale := rec // version 1, zero guesses
	alice.merge(context.Background(), stale)
	if got := alice.Record().Challenger.Count.N; got != 3 {
		t.Fatalf("stale snapshot applied, guesses = %d", got)
	}
}

func TestSetterChallengeAndJoinErrors(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "sam", Word: "lantern", Setter: true})
	if rec.Challenger.Count.Kind != Spectating || !rec.Challenger.finished() {
		t.Fatalf("setter columns: %+v", rec.Challenger)
	}
	if _, err := Join(context.Background(), s, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}

	solver := join(t, s, clock, rec.ID, "pat")
	if solver.Role() != Opponent || solver.Record().Opponent.Name != "pat" {
		t.Fatalf("open challenge not claimed: %+v", solver.Record().Opponent)
	}
	solver.PushProgress(4, true)
	if ev := waitEvent(t, solver, EventResult); !ev.Won {
		t.Fatalf("solver should win against a setter: %+v", ev)
	}
	if _, err := Join(context.Background(), s, rec.ID, "eve"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("third party err = %v", err)
	}
}

func TestSetterCannotRaceOwnChallenge(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "alice", Opponent: "bob", Word: "lantern", Setter: true})
	join(t, s, clock, rec.ID, "bob")

	if _, err := Join(context.Background(), s, rec.ID, "alice"); !errors.Is(err, ErrSpectator) {
		t.Fatalf("setter join err = %v, want ErrSpectator", err)
	}
	got, _ := s.UpdateProgress(context.Background(), rec.ID, Challenger, Progress{Status: PartyFinished, Count: GuessCount(1)})
	if got.Challenger.Count.Kind != Spectating {
		t.Fatalf("setter columns rewritten: %+v", got.Challenger)
	}
	if _, ok := Resolve(got); ok {
		t.Fatalf("resolved before the solver finished: %+v", got)
	}
}

func TestFinishedSideIsFinal(t *testing.T) {
	s, clock := newTestStore()
	rec, _ := s.Create(context.Background(), NewChallenge{Challenger: "alice", Word: "ocean"})

	first, err := Join(context.Background(), s, rec.ID, "alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	first.now = clock.Now
	first.PushProgress(7, true)
	waitRecord(t, s, rec.ID, func(r Record) bool { return r.Challenger.finished() })
	first.Close()

	if _, err := Join(context.Background(), s, rec.ID, "alice"); !errors.Is(err, ErrFinished) {
		t.Fatalf("rejoin err = %v, want ErrFinished", err)
	}
	got, err := s.UpdateProgress(context.Background(), rec.ID, Challenger, Progress{Status: PartyFinished, Count: GuessCount(1)})
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if got.Challenger.Count != GuessCount(7) {
		t.Fatalf("stored count = %+v, want 7 guesses", got.Challenger.Count)
	}
}
