package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "keykids.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	profile := model.DefaultProfile()
	profile.ErrorStats["j"] = 4
	profile.Achievements = []string{AchFirstThreeStars}
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		result := model.SessionResult{
			ID:          []string{"s0", "s1", "s2"}[i],
			LevelID:     1,
			Mode:        model.ModeLesson,
			Wpm:         10 + i,
			Accuracy:    90,
			Consistency: 70,
			Stars:       3,
			Duration:    30 * time.Second,
			Timestamp:   start.Add(30 * time.Second),
			Correct:     25,
			Errors:      2,
		}
		if err := st.SaveCompletion(ctx, profile, result); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].ID != "s1" || report.Results[1].ID != "s2" {
		t.Fatalf("unexpected result ids: %+v", report.Results)
	}
	if report.Summary.BestWpm != 12 || report.Summary.ThreeStars != 2 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if report.ErrorStats["j"] != 4 {
		t.Fatalf("expected error stats from snapshot, got %v", report.ErrorStats)
	}
	if len(report.Achievements) != 1 {
		t.Fatalf("expected 1 achievement, got %v", report.Achievements)
	}

	level := 2
	empty, err := BuildReport(ctx, st, model.StatsConfig{LevelID: &level})
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if len(empty.Results) != 0 {
		t.Fatalf("expected no level 2 results, got %d", len(empty.Results))
	}
}
