package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keykids/internal/model"
)

//go:embed levels.toml
var defaultLevels []byte

var (
	// ErrUnknownLevel is returned when a level id is not in the catalog.
	ErrUnknownLevel = errors.New("unknown level")
	// ErrLevelLocked is returned when a level has not been unlocked yet.
	ErrLevelLocked = errors.New("level is locked")
)

// Catalog is the immutable, id-ordered list of levels.
type Catalog struct {
	levels []model.Level
}

type catalogFile struct {
	Levels []model.Level `toml:"level"`
}

// DefaultCatalog returns the built-in level catalog.
func DefaultCatalog() (Catalog, error) {
	return parseCatalog(defaultLevels)
}

// LoadCatalog reads a level catalog from path, falling back to the built-in
// catalog when the file does not exist.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog()
		}
		return Catalog{}, fmt.Errorf("failed to read level catalog: %w", err)
	}
	cat, err := parseCatalog(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func parseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode level catalog: %w", err)
	}
	if err := validateLevels(file.Levels); err != nil {
		return Catalog{}, err
	}
	levels := append([]model.Level(nil), file.Levels...)
	sort.Slice(levels, func(i, j int) bool { return levels[i].ID < levels[j].ID })
	return Catalog{levels: levels}, nil
}

func validateLevels(levels []model.Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("level catalog is empty")
	}
	seen := make(map[int]struct{}, len(levels))
	for _, lvl := range levels {
		if lvl.ID <= 0 {
			return fmt.Errorf("level %q: id must be > 0", lvl.Name)
		}
		if _, ok := seen[lvl.ID]; ok {
			return fmt.Errorf("duplicate level id %d", lvl.ID)
		}
		seen[lvl.ID] = struct{}{}
		if lvl.MinWpm < 0 {
			return fmt.Errorf("level %d: min-wpm must be >= 0", lvl.ID)
		}
		if lvl.MinAccuracy < 0 || lvl.MinAccuracy > 100 {
			return fmt.Errorf("level %d: min-accuracy must be between 0 and 100", lvl.ID)
		}
		if len(lvl.TextSamples) == 0 {
			return fmt.Errorf("level %d: text-samples must not be empty", lvl.ID)
		}
	}
	return nil
}

// Levels returns the catalog levels ordered by id.
func (c Catalog) Levels() []model.Level {
	return append([]model.Level(nil), c.levels...)
}

// Level looks up a level by id.
func (c Catalog) Level(id int) (model.Level, error) {
	for _, lvl := range c.levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return model.Level{}, fmt.Errorf("%w: %d", ErrUnknownLevel, id)
}

// Next returns the level following id, if any.
func (c Catalog) Next(id int) (model.Level, bool) {
	for _, lvl := range c.levels {
		if lvl.ID > id {
			return lvl, true
		}
	}
	return model.Level{}, false
}

// PseudoLevel builds the synthetic level used by timed and error-drill
// sessions. It borrows the keys, samples and thresholds of base.
func PseudoLevel(mode model.Mode, base model.Level) model.Level {
	lvl := base
	switch mode {
	case model.ModeTimed:
		lvl.ID = model.TimedLevelID
		lvl.Name = "Timed Run"
	case model.ModeErrors:
		lvl.ID = model.ErrorsLevelID
		lvl.Name = "Tricky Keys"
	}
	return lvl
}

// Resolve picks the level a session plays. An id of 0 selects the highest
// unlocked level. Timed and error-drill modes wrap the level in a pseudo
// level.
func (c Catalog) Resolve(profile model.Profile, mode model.Mode, id int) (model.Level, error) {
	if id == 0 {
		id = c.highestUnlocked(profile)
	}
	base, err := c.Level(id)
	if err != nil {
		return model.Level{}, err
	}
	if !c.Unlocked(profile, id) {
		return model.Level{}, fmt.Errorf("%w: %d", ErrLevelLocked, id)
	}
	if mode == model.ModeTimed || mode == model.ModeErrors {
		return PseudoLevel(mode, base), nil
	}
	return base, nil
}

// Unlocked reports whether id may be played. The first catalog level is
// always open, whatever its id.
func (c Catalog) Unlocked(profile model.Profile, id int) bool {
	if len(c.levels) > 0 && id == c.levels[0].ID {
		return true
	}
	return profile.LevelUnlocked(id)
}

func (c Catalog) highestUnlocked(profile model.Profile) int {
	id := c.levels[0].ID
	for _, lvl := range c.levels {
		if c.Unlocked(profile, lvl.ID) {
			id = lvl.ID
		}
	}
	return id
}
