// Package model defines shared data structures.
package model

import (
	"slices"
	"time"
)

// Mode selects how a session is generated and when it ends.
type Mode string

const (
	// ModeLesson runs a level's text until the cursor reaches the end.
	ModeLesson Mode = "lesson"
	// ModeTimed runs until a fixed countdown expires.
	ModeTimed Mode = "timed"
	// ModeErrors drills the characters with the most persisted errors.
	ModeErrors Mode = "errors"
)

// Pseudo level ids used by sessions that do not belong to a catalog level.
const (
	TimedLevelID  = -1
	ErrorsLevelID = -2
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeLesson, ModeTimed, ModeErrors:
		return Mode(s), true
	default:
		return "", false
	}
}

// Config defines practice settings.
type Config struct {
	LevelID         int
	Mode            Mode
	Seconds         int
	Difficulty      int
	DecayRate       float64
	OutlierMs       int
	GenerateTimeout time.Duration
	WordListPath    string
}

// Level is one entry of the level catalog.
type Level struct {
	ID          int      `toml:"id"`
	Name        string   `toml:"name"`
	MinWpm      int      `toml:"min-wpm"`
	MinAccuracy int      `toml:"min-accuracy"`
	NewKeys     string   `toml:"new-keys"`
	AllKeys     string   `toml:"all-keys"`
	TextSamples []string `toml:"text-samples"`
}

// SessionResult captures a completed typing session.
type SessionResult struct {
	ID          string
	LevelID     int
	Mode        Mode
	Wpm         int
	Accuracy    int
	Consistency int
	Stars       int
	Duration    time.Duration
	Timestamp   time.Time
	Correct     int
	Errors      int
}

// Profile is the long-lived player state. It is loaded once at startup and
// replaced by an updated copy after every completed session.
type Profile struct {
	ErrorStats     map[string]int
	History        []SessionResult
	Achievements   []string
	UnlockedLevels []int
}

// DefaultProfile returns the state of a brand new player.
func DefaultProfile() Profile {
	return Profile{
		ErrorStats:     map[string]int{},
		History:        nil,
		Achievements:   nil,
		UnlockedLevels: []int{1},
	}
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := Profile{
		ErrorStats:     make(map[string]int, len(p.ErrorStats)),
		History:        slices.Clone(p.History),
		Achievements:   slices.Clone(p.Achievements),
		UnlockedLevels: slices.Clone(p.UnlockedLevels),
	}
	for ch, n := range p.ErrorStats {
		out.ErrorStats[ch] = n
	}
	return out
}

// LevelUnlocked reports whether a catalog level may be played.
func (p Profile) LevelUnlocked(id int) bool {
	if id <= 0 {
		return true
	}
	return slices.Contains(p.UnlockedLevels, id)
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	LevelID     *int
	Since       *time.Time
	Last        int
	CurveWindow int
}
