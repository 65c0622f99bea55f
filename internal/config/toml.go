// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Scoring  ScoringConfig  `toml:"scoring"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Level      *int    `toml:"level"`
	Mode       *string `toml:"mode"`
	Seconds    *int    `toml:"seconds"`
	Difficulty *int    `toml:"difficulty"`
	WordList   *string `toml:"word-list"`
}

// ScoringConfig maps the tunable scoring constants.
type ScoringConfig struct {
	DecayRate         *float64 `toml:"decay-rate"`
	OutlierMs         *int     `toml:"outlier-ms"`
	GenerateTimeoutMs *int     `toml:"generate-timeout-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
