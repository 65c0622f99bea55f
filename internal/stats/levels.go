package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/keykids/internal/model"
)

// BestStars returns the best star rating per level id in history.
func BestStars(history []model.SessionResult) map[int]int {
	best := map[int]int{}
	for _, r := range history {
		if r.Stars > best[r.LevelID] {
			best[r.LevelID] = r.Stars
		}
	}
	return best
}

// RenderLevels prints the level catalog with the player's progress. The
// first level is always shown as open.
func RenderLevels(w io.Writer, levels []model.Level, profile model.Profile) error {
	best := BestStars(profile.History)
	headers := []string{"Level", "Name", "New Keys", "Goal", "Best", "Status"}
	rows := make([][]string, 0, len(levels))
	for i, lvl := range levels {
		stars := "-"
		if n, ok := best[lvl.ID]; ok {
			stars = StarString(n)
		}
		status := "locked"
		if i == 0 || profile.LevelUnlocked(lvl.ID) {
			status = "open"
		}
		rows = append(rows, []string{
			strconv.Itoa(lvl.ID),
			lvl.Name,
			lvl.NewKeys,
			fmt.Sprintf("%d wpm / %d%%", lvl.MinWpm, lvl.MinAccuracy),
			stars,
			status,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
