// Package stats scores typing sessions and builds reports over a player's history.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/keykids/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a run of session results.
type Summary struct {
	Sessions       int
	AvgWpm         float64
	BestWpm        int
	AvgAccuracy    float64
	AvgConsistency float64
	ThreeStars     int
}

// Summarize aggregates results into a Summary.
func Summarize(results []model.SessionResult) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	var wpm, acc, cons float64
	for _, r := range results {
		wpm += float64(r.Wpm)
		acc += float64(r.Accuracy)
		cons += float64(r.Consistency)
		if r.Wpm > s.BestWpm {
			s.BestWpm = r.Wpm
		}
		if r.Stars == 3 {
			s.ThreeStars++
		}
	}
	count := float64(len(results))
	s.Sessions = len(results)
	s.AvgWpm = wpm / count
	s.AvgAccuracy = acc / count
	s.AvgConsistency = cons / count
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// StarString renders a star count as filled and empty stars.
func StarString(stars int) string {
	stars = min(max(stars, 0), 3)
	return strings.Repeat("★", stars) + strings.Repeat("☆", 3-stars)
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.SessionResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWpm),
		fmt.Sprintf("Best WPM: %d", s.BestWpm),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Consistency: %.1f", s.AvgConsistency),
		fmt.Sprintf("3-star sessions: %d", s.ThreeStars),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints moving-average sparklines of WPM, accuracy and
// consistency, keeping at most width points.
func RenderCurves(w io.Writer, results []model.SessionResult, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	if width > 0 && len(results) > width {
		results = results[len(results)-width:]
	}
	wpm := make([]float64, len(results))
	acc := make([]float64, len(results))
	cons := make([]float64, len(results))
	for i, r := range results {
		wpm[i] = float64(r.Wpm)
		acc[i] = float64(r.Accuracy)
		cons[i] = float64(r.Consistency)
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	rows := [][]string{
		{"WPM", Sparkline(MovingAverage(wpm, window))},
		{"Accuracy", Sparkline(MovingAverage(acc, window))},
		{"Rhythm", Sparkline(MovingAverage(cons, window))},
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderErrorTable prints persisted error counts, most troublesome first.
func RenderErrorTable(w io.Writer, errorStats map[string]int) error {
	ranked := RankErrorChars(errorStats)
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "No tricky keys right now.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Tricky Keys"); err != nil {
		return err
	}
	headers := []string{"Char", "Errors"}
	rows := make([][]string, 0, len(ranked))
	for _, cc := range ranked {
		rows = append(rows, []string{CharLabel(cc.Char), fmt.Sprintf("%d", cc.Count)})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAchievements prints every achievement with its unlock state.
func RenderAchievements(w io.Writer, unlocked []string) error {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}
	if _, err := fmt.Fprintf(w, "Achievements (%d/%d)\n", len(have), len(Achievements)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(Achievements))
	for _, a := range Achievements {
		mark := "[ ]"
		if have[a.ID] {
			mark = "[x]"
		}
		rows = append(rows, []string{mark, a.Title, a.Description})
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CharLabel makes whitespace characters visible in tables.
func CharLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\t":
		return "<tab>"
	default:
		return ch
	}
}
