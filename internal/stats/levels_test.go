package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keykids/internal/model"
)

func TestBestStars(t *testing.T) {
	best := BestStars([]model.SessionResult{
		{LevelID: 1, Stars: 2},
		{LevelID: 1, Stars: 3},
		{LevelID: 2, Stars: 1},
		{LevelID: 1, Stars: 1},
	})
	assert.Equal(t, map[int]int{1: 3, 2: 1}, best)
}

func TestRenderLevels(t *testing.T) {
	levels := []model.Level{
		{ID: 1, Name: "Left Hand", NewKeys: "asdf", MinWpm: 5, MinAccuracy: 85},
		{ID: 2, Name: "Right Hand", NewKeys: "jkl;", MinWpm: 6, MinAccuracy: 85},
	}
	profile := model.DefaultProfile()
	profile.History = []model.SessionResult{{LevelID: 1, Stars: 1}}

	var buf bytes.Buffer
	require.NoError(t, RenderLevels(&buf, levels, profile))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Status")
	assert.True(t, strings.HasPrefix(lines[1], "-----"))
	assert.Contains(t, lines[2], "Left Hand")
	assert.Contains(t, lines[2], "5 wpm / 85%")
	assert.Contains(t, lines[2], "open")
	assert.Contains(t, lines[3], "locked")
}

func TestRenderLevelsFirstLevelOpen(t *testing.T) {
	levels := []model.Level{
		{ID: 10, Name: "Start", NewKeys: "fj"},
		{ID: 20, Name: "Next", NewKeys: "dk"},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderLevels(&buf, levels, model.DefaultProfile()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "open")
	assert.Contains(t, lines[3], "locked")
}
