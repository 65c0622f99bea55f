package stats

import "math"

// DefaultDecayRate forgives about one historical error per three correct presses.
const DefaultDecayRate = 0.33

// ApplyErrorStats merges a session's errors into the persisted per-character
// error counts, then decays each already-positive count by
// floor(corrects*rate). Counts never drop below zero. The input map is not
// modified.
func ApplyErrorStats(persisted, sessionErrors, sessionCorrects map[string]int, rate float64) map[string]int {
	out := make(map[string]int, len(persisted)+len(sessionErrors))
	for ch, n := range persisted {
		out[ch] = n
	}
	for ch, n := range sessionErrors {
		out[ch] += n
	}
	for ch, n := range sessionCorrects {
		current, ok := out[ch]
		if !ok || current <= 0 {
			continue
		}
		forgiven := int(math.Floor(float64(n) * rate))
		out[ch] = max(0, current-forgiven)
	}
	return out
}
