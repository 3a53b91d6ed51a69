package game

import (
	"testing"
	"time"
)

func TestScoreCorrectAddsTenthsRemaining(t *testing.T) {
	// 4569ms rounds to 4.6s remaining -> 100 + 46.
	got := Score(true, 4569*time.Millisecond)
	if got != 146 {
		t.Fatalf("expected 146, got %d", got)
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{9950 * time.Millisecond, 200}, // 99.5 tenths rounds to 100
		{9949 * time.Millisecond, 199},
		{10 * time.Second, 200},
		{50 * time.Millisecond, 101}, // 0.5 tenths rounds to 1
		{49 * time.Millisecond, 100},
		{0, 100},
	}
	for _, c := range cases {
		if got := Score(true, c.remaining); got != c.want {
			t.Fatalf("Score(true, %v) = %d, want %d", c.remaining, got, c.want)
		}
	}
}

func TestScoreWrongIsZero(t *testing.T) {
	if got := Score(false, 9*time.Second); got != 0 {
		t.Fatalf("expected 0 for wrong answer, got %d", got)
	}
	if got := Score(false, 0); got != 0 {
		t.Fatalf("expected 0 for timeout, got %d", got)
	}
}

func TestElapsedSeconds(t *testing.T) {
	if got := ElapsedSeconds(10*time.Second, 4569*time.Millisecond); got != "5.4" {
		t.Fatalf("expected 5.4, got %s", got)
	}
	if got := ElapsedSeconds(10*time.Second, 10*time.Second); got != "0" {
		t.Fatalf("expected 0, got %s", got)
	}
	// Timing sources can disagree; the display is deliberately not clamped.
	if got := ElapsedSeconds(10*time.Second, 10500*time.Millisecond); got != "-0.5" {
		t.Fatalf("expected -0.5, got %s", got)
	}
}

func TestResolveOption(t *testing.T) {
	cases := map[string]int{
		"a": 1, "B": 2, " c ": 3, "D": 4,
		"e": 0, "ab": 0, "": 0, "the first one": 0,
	}
	for text, want := range cases {
		if got := ResolveOption(text); got != want {
			t.Fatalf("ResolveOption(%q) = %d, want %d", text, got, want)
		}
	}
}
