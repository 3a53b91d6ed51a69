package game

import (
	"math"
	"strconv"
	"time"
)

// Tenths converts a duration to tenths of a second, rounded to nearest with
// halves up (4569ms -> 46). Scoring and the elapsed-time display both work on
// this rounded value.
func Tenths(d time.Duration) int {
	return int(math.Round(float64(d.Milliseconds()) / 100.0))
}

// Score maps a grading outcome to points. Wrong or timed-out answers earn
// nothing; a correct answer earns 100 base points plus one point per rounded
// tenth of a second left on the clock at the moment the timer was cancelled.
func Score(correct bool, remaining time.Duration) int {
	if !correct {
		return 0
	}
	return 100 + Tenths(remaining)
}

// ElapsedSeconds renders how long the player took, as the difference of the
// rounded timeout and rounded remaining time. The value is not clamped: if
// the timer source and the configured timeout disagree it may look negative.
func ElapsedSeconds(timeout, remaining time.Duration) string {
	tenths := Tenths(timeout) - Tenths(remaining)
	return strconv.FormatFloat(float64(tenths)/10.0, 'f', -1, 64)
}
