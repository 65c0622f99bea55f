package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/verte-zerg/keykids/internal/model"
)

const snapshotSchemaURL = "keykids://profile-snapshot.json"

// Fields are optional so older snapshots keep loading as the format grows.
const snapshotSchema = `{
	"type": "object",
	"properties": {
		"errorStats": {
			"type": "object",
			"additionalProperties": {"type": "integer", "minimum": 0}
		},
		"achievements": {
			"type": "array",
			"items": {"type": "string"}
		},
		"unlockedLevels": {
			"type": "array",
			"items": {"type": "integer", "minimum": 1}
		}
	}
}`

var compiledSnapshotSchema = jsonschema.MustCompileString(snapshotSchemaURL, snapshotSchema)

type snapshot struct {
	ErrorStats     map[string]int `json:"errorStats"`
	Achievements   []string       `json:"achievements"`
	UnlockedLevels []int          `json:"unlockedLevels"`
}

func newSnapshot(p model.Profile) snapshot {
	return snapshot{
		ErrorStats:     p.ErrorStats,
		Achievements:   p.Achievements,
		UnlockedLevels: p.UnlockedLevels,
	}
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return snapshot{}, fmt.Errorf("invalid snapshot json: %w", err)
	}
	if err := compiledSnapshotSchema.Validate(doc); err != nil {
		return snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, fmt.Errorf("invalid snapshot json: %w", err)
	}
	return snap, nil
}

func (s snapshot) profile() model.Profile {
	p := model.DefaultProfile()
	for ch, n := range s.ErrorStats {
		p.ErrorStats[ch] = n
	}
	if len(s.Achievements) > 0 {
		p.Achievements = append([]string(nil), s.Achievements...)
	}
	if len(s.UnlockedLevels) > 0 {
		levels := append([]int(nil), s.UnlockedLevels...)
		sort.Ints(levels)
		p.UnlockedLevels = levels
	}
	return p
}
