package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keykids/internal/model"
)

func historyOf(n int) []model.SessionResult {
	out := make([]model.SessionResult, n)
	for i := range out {
		out[i] = model.SessionResult{LevelID: 1, Stars: 1}
	}
	return out
}

func TestEvaluateAchievementsStreak(t *testing.T) {
	result := model.SessionResult{LevelID: 2, Stars: 2, Wpm: 10, Accuracy: 90}
	history := append(historyOf(9), result)

	updated, just := EvaluateAchievements(result, history, nil)
	assert.Equal(t, []string{AchSessionStreak}, just)
	assert.Equal(t, []string{AchSessionStreak}, updated)
	assert.NotContains(t, updated, AchFirstThreeStars)
}

func TestEvaluateAchievementsIdempotent(t *testing.T) {
	result := model.SessionResult{LevelID: 3, Stars: 3, Wpm: 55, Accuracy: 100}
	history := []model.SessionResult{result}

	updated, just := EvaluateAchievements(result, history, nil)
	require.Equal(t, []string{AchFirstThreeStars, AchSpeedDemon, AchAccuracyMaster, AchHomeRowMaster}, just)

	again, justAgain := EvaluateAchievements(result, history, updated)
	assert.Empty(t, justAgain)
	assert.Equal(t, updated, again)
}

func TestEvaluateAchievementsPseudoLevelAccuracy(t *testing.T) {
	result := model.SessionResult{LevelID: model.TimedLevelID, Stars: 2, Accuracy: 100}
	_, just := EvaluateAchievements(result, []model.SessionResult{result}, nil)
	assert.NotContains(t, just, AchAccuracyMaster)
}

func TestEvaluateAchievementsKeepsExisting(t *testing.T) {
	result := model.SessionResult{LevelID: 1, Stars: 3}
	unlocked := []string{AchSpeedDemon}
	updated, just := EvaluateAchievements(result, []model.SessionResult{result}, unlocked)
	assert.Equal(t, []string{AchFirstThreeStars}, just)
	assert.Equal(t, []string{AchSpeedDemon, AchFirstThreeStars}, updated)
	assert.Equal(t, []string{AchSpeedDemon}, unlocked)
}

func TestAchievementByID(t *testing.T) {
	a, ok := AchievementByID(AchHomeRowMaster)
	require.True(t, ok)
	assert.Equal(t, "Home Row Hero", a.Title)
	_, ok = AchievementByID("nope")
	assert.False(t, ok)
}
