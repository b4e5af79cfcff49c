package game

import "testing"

func TestPointsFormula(t *testing.T) {
	cases := []struct {
		name                            string
		remaining, initial, streak, lvl int
		want                            int
	}{
		// (100 + 10*remaining + speed + 5*level) * min(streak,10)
		{"full clock", 30, 30, 1, 1, 100 + 300 + 100 + 5},
		{"just under fast cutoff", 23, 30, 1, 1, 100 + 230 + 50 + 5},
		{"mid round", 13, 30, 1, 1, 100 + 130 + 25 + 5},
		{"slow answer", 2, 30, 1, 1, 100 + 20 + 0 + 5},
		{"streak multiplies", 30, 30, 3, 1, (100 + 300 + 100 + 5) * 3},
		{"level bonus", 30, 30, 1, 4, 100 + 300 + 100 + 20},
	}
	for _, c := range cases {
		if got := Points(c.remaining, c.initial, c.streak, c.lvl); got != c.want {
			t.Fatalf("%s: Points=%d, want %d", c.name, got, c.want)
		}
	}
}

func TestPointsMonotoneInRemainingTime(t *testing.T) {
	prev := -1
	for remaining := 0; remaining <= 30; remaining++ {
		got := Points(remaining, 30, 1, 1)
		if got < prev {
			t.Fatalf("Points not monotone: remaining=%d gives %d, previous %d", remaining, got, prev)
		}
		prev = got
	}
}

func TestPointsMonotoneInStreakAndCapped(t *testing.T) {
	prev := -1
	for streak := 1; streak <= MaxStreakMultiplier; streak++ {
		got := Points(10, 30, streak, 1)
		if got < prev {
			t.Fatalf("Points not monotone in streak: streak=%d gives %d, previous %d", streak, got, prev)
		}
		prev = got
	}
	capped := Points(10, 30, MaxStreakMultiplier, 1)
	for streak := MaxStreakMultiplier + 1; streak <= 25; streak++ {
		if got := Points(10, 30, streak, 1); got != capped {
			t.Fatalf("streak %d gives %d, want capped %d", streak, got, capped)
		}
	}
}

func TestPointsTotal(t *testing.T) {
	// Degenerate inputs must not panic or go negative.
	if got := Points(-5, 0, 0, 0); got < 0 {
		t.Fatalf("Points went negative: %d", got)
	}
}

func TestDurationForLevel(t *testing.T) {
	cases := []struct {
		level, wantSec int
	}{
		{1, 30}, {2, 30}, {3, 29}, {6, 28}, {30, 20}, {45, 15}, {90, 15},
	}
	for _, c := range cases {
		if got := DurationForLevel(c.level); int(got.Seconds()) != c.wantSec {
			t.Fatalf("level %d: duration %v, want %ds", c.level, got, c.wantSec)
		}
	}
}
