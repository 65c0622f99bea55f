package stats

import (
	"context"

	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results      []model.SessionResult
	Summary      Summary
	ErrorStats   map[string]int
	Achievements []string
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	profile, err := st.LoadProfile(ctx)
	if err != nil {
		return Report{}, err
	}
	results := profile.History
	if cfg.LevelID != nil || cfg.Since != nil {
		results, err = st.ListResults(ctx, cfg)
		if err != nil {
			return Report{}, err
		}
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return Report{
		Results:      results,
		Summary:      Summarize(results),
		ErrorStats:   profile.ErrorStats,
		Achievements: profile.Achievements,
	}, nil
}
