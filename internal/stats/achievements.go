package stats

import "github.com/verte-zerg/keykids/internal/model"

// Achievement ids.
const (
	AchFirstThreeStars = "first_3_stars"
	AchSpeedDemon      = "speed_demon"
	AchAccuracyMaster  = "accuracy_master"
	AchSessionStreak   = "session_streak"
	AchHomeRowMaster   = "home_row_master"
)

// Achievement is a badge unlocked by a rule over the latest result and the
// full history, which already includes that result.
type Achievement struct {
	ID          string
	Title       string
	Description string
	rule        func(result model.SessionResult, history []model.SessionResult) bool
}

// Achievements is the ordered rule set.
var Achievements = []Achievement{
	{
		ID:          AchFirstThreeStars,
		Title:       "Superstar",
		Description: "Earn 3 stars in a session",
		rule: func(r model.SessionResult, _ []model.SessionResult) bool {
			return r.Stars == 3
		},
	},
	{
		ID:          AchSpeedDemon,
		Title:       "Speed Demon",
		Description: "Type 50 words per minute",
		rule: func(r model.SessionResult, _ []model.SessionResult) bool {
			return r.Wpm >= 50
		},
	},
	{
		ID:          AchAccuracyMaster,
		Title:       "Perfect Aim",
		Description: "Finish a level with 100% accuracy",
		rule: func(r model.SessionResult, _ []model.SessionResult) bool {
			return r.Accuracy == 100 && r.LevelID > 0
		},
	},
	{
		ID:          AchSessionStreak,
		Title:       "Keep Going",
		Description: "Complete 10 sessions",
		rule: func(_ model.SessionResult, h []model.SessionResult) bool {
			return len(h) >= 10
		},
	},
	{
		ID:          AchHomeRowMaster,
		Title:       "Home Row Hero",
		Description: "Earn 3 stars on level 3",
		rule: func(r model.SessionResult, _ []model.SessionResult) bool {
			return r.LevelID == 3 && r.Stars == 3
		},
	},
}

// AchievementByID looks up an achievement definition.
func AchievementByID(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// EvaluateAchievements runs every rule not yet unlocked. It returns the
// updated unlocked set and the ids unlocked by this call, both in rule
// order. Already unlocked ids are never duplicated.
func EvaluateAchievements(result model.SessionResult, history []model.SessionResult, unlocked []string) (updated, justUnlocked []string) {
	have := make(map[string]struct{}, len(unlocked))
	for _, id := range unlocked {
		have[id] = struct{}{}
	}
	updated = append([]string(nil), unlocked...)
	for _, a := range Achievements {
		if _, ok := have[a.ID]; ok {
			continue
		}
		if !a.rule(result, history) {
			continue
		}
		have[a.ID] = struct{}{}
		updated = append(updated, a.ID)
		justUnlocked = append(justUnlocked, a.ID)
	}
	return updated, justUnlocked
}
