package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/stats"
)

type fakeCatalog map[int]model.Level

func (c fakeCatalog) Next(id int) (model.Level, bool) {
	lvl, ok := c[id+1]
	return lvl, ok
}

var testCatalog = fakeCatalog{
	1: {ID: 1, MinWpm: 5, MinAccuracy: 85},
	2: {ID: 2, MinWpm: 5, MinAccuracy: 85},
	3: {ID: 3, MinWpm: 5, MinAccuracy: 85},
}

// typeText feeds text one correct key per step.
func typeText(t *testing.T, s *Session, text string, start time.Time, step time.Duration) time.Time {
	t.Helper()
	now := start
	for _, r := range text {
		key := string(r)
		if r == ' ' {
			key = "space"
		}
		out, err := s.HandleKey(key, now)
		require.NoError(t, err)
		require.Equal(t, Correct, out)
		now = now.Add(step)
	}
	return now
}

func TestCompleteLessonSession(t *testing.T) {
	text := "asdf jkl; asdf jkl; asdf"
	s := startedSession(t, Options{}, text)
	_, _ = s.HandleKey("q", t0)
	typeText(t, s, text, t0, 200*time.Millisecond)
	require.Equal(t, PhaseFinished, s.Phase())

	profile := model.DefaultProfile()
	profile.ErrorStats["a"] = 5
	updated, c, err := Complete(profile, s, testCatalog[1], testCatalog, stats.DefaultDecayRate)
	require.NoError(t, err)

	// 24 chars over 4.6s.
	assert.Equal(t, 63, c.Result.Wpm)
	assert.Equal(t, 96, c.Result.Accuracy)
	assert.Equal(t, 100, c.Result.Consistency)
	assert.Equal(t, 3, c.Result.Stars)
	assert.Equal(t, 1, c.Result.LevelID)
	assert.Equal(t, s.ID(), c.Result.ID)
	assert.Equal(t, 4600*time.Millisecond, c.Result.Duration)

	// 'a': 5 + 1 error, and 3 corrects forgive floor(0.99)=0.
	assert.Equal(t, 6, updated.ErrorStats["a"])
	assert.Equal(t, 5, profile.ErrorStats["a"], "input profile untouched")
	assert.Len(t, updated.History, 1)
	assert.Empty(t, profile.History)
	assert.Equal(t, []string{stats.AchFirstThreeStars, stats.AchSpeedDemon}, c.JustUnlocked)
	assert.Equal(t, 2, c.UnlockedLevel)
	assert.Equal(t, []int{1, 2}, updated.UnlockedLevels)
}

func TestCompleteRequiresFinished(t *testing.T) {
	s := startedSession(t, Options{}, "abc")
	_, _ = s.HandleKey("a", t0)
	profile := model.DefaultProfile()
	got, _, err := Complete(profile, s, testCatalog[1], testCatalog, stats.DefaultDecayRate)
	assert.ErrorIs(t, err, ErrNotFinished)
	assert.Equal(t, profile, got)
}

func TestCompleteTimedUsesConfiguredDuration(t *testing.T) {
	s := startedSession(t, Options{Mode: model.ModeTimed, TimeBudget: time.Minute}, "asdf asdf")
	end := typeText(t, s, "asdf asdf asdf asdf asdf asdf asdf asdf asdf asdf", t0, 100*time.Millisecond)
	require.NoError(t, s.Expire(s.ID(), end))

	level := model.Level{ID: model.TimedLevelID, MinWpm: 5, MinAccuracy: 85}
	_, c, err := Complete(model.DefaultProfile(), s, level, testCatalog, stats.DefaultDecayRate)
	require.NoError(t, err)
	// 49 chars / 5 = 9.8 words over the 1 minute budget, not the 4.9s elapsed.
	assert.Equal(t, 10, c.Result.Wpm)
	assert.Equal(t, time.Minute, c.Result.Duration)
	assert.Equal(t, 0, c.UnlockedLevel, "pseudo levels never unlock")
}

func TestCompleteSessionStreak(t *testing.T) {
	profile := model.DefaultProfile()
	for i := 0; i < 9; i++ {
		profile.History = append(profile.History, model.SessionResult{ID: fmt.Sprint(i), LevelID: 1, Stars: 1})
	}
	// Slow enough to miss the speed target but accurate: 2 stars.
	level := model.Level{ID: 2, MinWpm: 200, MinAccuracy: 85}
	text := "jkl; jkl; jkl; jkl;"
	s := startedSession(t, Options{}, text)
	_, _ = s.HandleKey("x", t0)
	typeText(t, s, text, t0, time.Second)

	updated, c, err := Complete(profile, s, level, testCatalog, stats.DefaultDecayRate)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Result.Stars)
	assert.Len(t, updated.History, 10)
	assert.Equal(t, []string{stats.AchSessionStreak}, c.JustUnlocked)
	assert.NotContains(t, updated.Achievements, stats.AchFirstThreeStars)
	assert.Equal(t, 3, c.UnlockedLevel)
}

func TestCompleteCancelledSessionLeavesProfile(t *testing.T) {
	s := startedSession(t, Options{}, "abc")
	_, _ = s.HandleKey("z", t0)
	s.Cancel()
	profile := model.DefaultProfile()
	profile.ErrorStats["a"] = 2
	got, _, err := Complete(profile, s, testCatalog[1], testCatalog, stats.DefaultDecayRate)
	assert.Error(t, err)
	assert.Equal(t, 2, got.ErrorStats["a"])
	assert.Empty(t, got.History)
}
