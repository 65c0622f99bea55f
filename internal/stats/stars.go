package stats

import "github.com/verte-zerg/keykids/internal/model"

// Stars rates a session against a level. Thresholds are inclusive and the
// result is always 1, 2 or 3.
func Stars(wpm, accuracy int, level model.Level) int {
	switch {
	case wpm >= level.MinWpm && accuracy >= level.MinAccuracy:
		return 3
	case accuracy >= level.MinAccuracy:
		return 2
	default:
		return 1
	}
}
