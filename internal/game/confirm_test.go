package game

import (
	"testing"
	"time"
)

func TestConfirmStateMachine(t *testing.T) {
	var c Confirm
	now := time.Unix(1000, 0)
	w := 3 * time.Second

	steps := []struct {
		after time.Duration
		fired bool
	}{
		{0, false},               // Idle → Armed
		{2 * time.Second, true},  // inside window
		{0, false},               // Idle again
		{3 * time.Second, false}, // window is exclusive at its end
		{time.Second, true},
	}
	for i, s := range steps {
		now = now.Add(s.after)
		if got := c.Press(now, w); got != s.fired {
			t.Fatalf("step %d: fired = %v, want %v", i, got, s.fired)
		}
	}
	if !c.Until().IsZero() || c.Armed(now) {
		t.Fatalf("expected idle after firing")
	}
}
