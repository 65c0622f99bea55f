package engine

import (
	"slices"
	"time"

	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/stats"
)

// LevelCatalog resolves the level that follows a passed one.
type LevelCatalog interface {
	Next(id int) (model.Level, bool)
}

// minStarsToUnlock is the star count that opens the next level.
const minStarsToUnlock = 2

// Completion describes what a finished session changed.
type Completion struct {
	Result       model.SessionResult
	Score        stats.Score
	JustUnlocked []string
	// UnlockedLevel is the level id opened by this session, or 0.
	UnlockedLevel int
}

// Complete scores a finished session and folds it into the profile. It runs
// the scorer, star rating, error decay, history append and achievement rules
// in that order and returns an updated copy; profile itself is not modified.
func Complete(profile model.Profile, s *Session, level model.Level, catalog LevelCatalog, decayRate float64) (model.Profile, Completion, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return profile, Completion{}, err
	}

	score := stats.ScoreSession(stats.ScoreInput{
		Cursor:     snap.Cursor,
		Errors:     snap.Errors,
		Intervals:  snap.Intervals,
		StartedAt:  snap.StartedAt,
		EndedAt:    snap.EndedAt,
		Timed:      snap.Mode == model.ModeTimed,
		TimeBudget: snap.TimeBudget,
	})
	stars := stats.Stars(score.Wpm, score.Accuracy, level)

	updated := profile.Clone()
	updated.ErrorStats = stats.ApplyErrorStats(profile.ErrorStats, snap.SessionErrors, snap.SessionCorrects, decayRate)

	result := model.SessionResult{
		ID:          snap.ID,
		LevelID:     level.ID,
		Mode:        snap.Mode,
		Wpm:         score.Wpm,
		Accuracy:    score.Accuracy,
		Consistency: score.Consistency,
		Stars:       stars,
		Duration:    sessionDuration(snap),
		Timestamp:   snap.EndedAt,
		Correct:     snap.Cursor,
		Errors:      snap.Errors,
	}
	updated.History = append(updated.History, result)

	var just []string
	updated.Achievements, just = stats.EvaluateAchievements(result, updated.History, updated.Achievements)

	completion := Completion{Result: result, Score: score, JustUnlocked: just}
	if level.ID > 0 && stars >= minStarsToUnlock && catalog != nil {
		if next, ok := catalog.Next(level.ID); ok && !slices.Contains(updated.UnlockedLevels, next.ID) {
			updated.UnlockedLevels = append(updated.UnlockedLevels, next.ID)
			slices.Sort(updated.UnlockedLevels)
			completion.UnlockedLevel = next.ID
		}
	}
	return updated, completion, nil
}

func sessionDuration(snap Snapshot) time.Duration {
	if snap.Mode == model.ModeTimed {
		return snap.TimeBudget
	}
	if snap.StartedAt.IsZero() {
		return 0
	}
	return snap.EndedAt.Sub(snap.StartedAt)
}
