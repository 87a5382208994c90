package heat

import "testing"

func TestForBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Temperature
	}{
		{-5, Freezing},
		{0, Freezing},
		{19, Freezing},
		{20, Cold},
		{44, Cold},
		{45, Warm},
		{69, Warm},
		{70, Hot},
		{89, Hot},
		{90, Burning},
		{99, Burning},
		{100, Solved},
		{150, Solved},
	}
	for _, tc := range tests {
		if got := For(tc.score); got != tc.want {
			t.Errorf("For(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestForIsTotal(t *testing.T) {
	valid := map[Temperature]bool{Freezing: true, Cold: true, Warm: true, Hot: true, Burning: true, Solved: true}
	prev := Freezing
	order := map[Temperature]int{Freezing: 0, Cold: 1, Warm: 2, Hot: 3, Burning: 4, Solved: 5}
	for s := 0; s <= 100; s++ {
		got := For(s)
		if !valid[got] {
			t.Fatalf("For(%d) returned unknown band %q", s, got)
		}
		if order[got] < order[prev] {
			t.Fatalf("band decreased at %d: %s after %s", s, got, prev)
		}
		prev = got
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  OcEaN \n"); got != "ocean" {
		t.Fatalf("Normalize = %q", got)
	}
}
