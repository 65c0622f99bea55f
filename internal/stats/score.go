package stats

import (
	"math"
	"time"
)

const (
	charsPerWord = 5
	// minMinutes keeps near-instant sessions from dividing by zero.
	minMinutes = 0.001
	// minIntervals is the sample size below which rhythm is assumed steady.
	minIntervals = 3
)

// ScoreInput is what the session hands to the scorer when it finishes.
type ScoreInput struct {
	Cursor     int
	Errors     int
	Intervals  []time.Duration
	StartedAt  time.Time
	EndedAt    time.Time
	Timed      bool
	TimeBudget time.Duration
}

// Score holds the rounded session metrics.
type Score struct {
	Wpm         int
	Accuracy    int
	Consistency int
	Minutes     float64
}

// ScoreSession computes WPM, accuracy and consistency for a finished session.
func ScoreSession(in ScoreInput) Score {
	minutes := DurationMinutes(in.StartedAt, in.EndedAt, in.Timed, in.TimeBudget)
	return Score{
		Wpm:         Wpm(in.Cursor, minutes),
		Accuracy:    Accuracy(in.Cursor, in.Errors),
		Consistency: Consistency(in.Intervals),
		Minutes:     minutes,
	}
}

// DurationMinutes returns the measured session length in minutes, or the
// configured budget in timed mode where the countdown is authoritative.
func DurationMinutes(start, end time.Time, timed bool, budget time.Duration) float64 {
	if timed {
		return budget.Minutes()
	}
	if start.IsZero() || end.Before(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}

// Wpm converts completed characters into gross words per minute.
func Wpm(chars int, minutes float64) int {
	words := float64(chars) / charsPerWord
	return int(math.Round(words / math.Max(minutes, minMinutes)))
}

// Accuracy is the share of completed characters not offset by errors, as a
// whole percent in [0, 100]. Zero completed characters yields 0.
func Accuracy(correct, errors int) int {
	if correct <= 0 {
		return 0
	}
	pct := math.Round(float64(correct-errors) / float64(correct) * 100)
	return int(math.Max(0, pct))
}

// Consistency scores keystroke rhythm from the coefficient of variation of
// the recorded intervals. 100 is perfectly steady.
func Consistency(intervals []time.Duration) int {
	if len(intervals) < minIntervals {
		return 100
	}
	var sum float64
	for _, d := range intervals {
		sum += float64(d)
	}
	mean := sum / float64(len(intervals))
	if mean <= 0 {
		return 100
	}
	var sq float64
	for _, d := range intervals {
		diff := float64(d) - mean
		sq += diff * diff
	}
	stdDev := math.Sqrt(sq / float64(len(intervals)))
	cv := stdDev / mean
	return int(math.Max(0, math.Round(100-cv*100)))
}
