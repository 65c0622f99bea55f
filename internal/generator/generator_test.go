package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keykids/internal/model"
)

func testLevel() model.Level {
	return model.Level{
		ID:          2,
		Name:        "Right Home Row",
		AllKeys:     "asdfjkl;",
		TextSamples: []string{"ask a lad", "all lads fall", "jak flak"},
	}
}

func TestGenerateLessonUsesSamples(t *testing.T) {
	g := NewWithSeed(1, nil)
	level := testLevel()

	text, err := g.Generate(context.Background(), Request{Level: level, Mode: model.ModeLesson, Difficulty: 1})
	require.NoError(t, err)
	assert.Contains(t, level.TextSamples, text)
}

func TestGenerateLessonDifficultyJoinsSamples(t *testing.T) {
	g := NewWithSeed(1, nil)
	text, err := g.Generate(context.Background(), Request{Level: testLevel(), Mode: model.ModeLesson, Difficulty: 3})
	require.NoError(t, err)

	words := strings.Fields(text)
	assert.GreaterOrEqual(t, len(words), 6)
}

func TestGenerateTimedContainsEverySample(t *testing.T) {
	g := NewWithSeed(7, nil)
	level := testLevel()
	text, err := g.Generate(context.Background(), Request{Level: level, Mode: model.ModeTimed})
	require.NoError(t, err)
	for _, sample := range level.TextSamples {
		assert.Contains(t, text, sample)
	}
}

func TestGenerateDrillFavorsWeakChars(t *testing.T) {
	g := NewWithSeed(3, []string{"jjj", "kkk", "zebra"})
	req := Request{
		Level:      testLevel(),
		Mode:       model.ModeErrors,
		ErrorStats: map[string]int{"j": 9},
		Difficulty: 3,
	}
	text, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	words := strings.Fields(text)
	require.Len(t, words, drillWords*3)
	withJ := 0
	for _, w := range words {
		assert.NotEqual(t, "zebra", w)
		if strings.ContainsRune(w, 'j') {
			withJ++
		}
	}
	assert.Greater(t, withJ, len(words)/3)
}

func TestGenerateDrillWithoutStatsFallsBackToLesson(t *testing.T) {
	g := NewWithSeed(3, nil)
	level := testLevel()
	text, err := g.Generate(context.Background(), Request{Level: level, Mode: model.ModeErrors})
	require.NoError(t, err)
	assert.Contains(t, level.TextSamples, text)
}

func TestGenerateErrors(t *testing.T) {
	g := NewWithSeed(1, nil)

	_, err := g.Generate(context.Background(), Request{Level: model.Level{ID: 1}})
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = g.Generate(context.Background(), Request{Level: testLevel(), Mode: "race"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, Request{Level: testLevel()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateDrillWidensPoolForOtherLevelKeys(t *testing.T) {
	level := model.Level{ID: 1, AllKeys: "asdf", TextSamples: []string{"sad dad"}}
	req := Request{Level: level, Mode: model.ModeErrors, ErrorStats: map[string]int{"k": 4}}

	g := NewWithSeed(5, []string{"ask", "zebra"})
	text, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(text), "ask")
	assert.NotContains(t, text, "zebra")

	g = NewWithSeed(5, nil)
	text, err = g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(text), "kkk")
}

func TestDrillDecor(t *testing.T) {
	level := model.Level{AllKeys: "abcABC,.;"}

	caps, punct, set := drillDecor(level, 2)
	assert.Zero(t, caps)
	assert.Zero(t, punct)
	assert.Nil(t, set)

	caps, punct, set = drillDecor(level, 3)
	assert.Equal(t, drillCapsPct, caps)
	assert.Equal(t, drillPunctPct, punct)
	assert.Equal(t, []rune{',', '.', ';'}, set)

	caps, punct, set = drillDecor(model.Level{AllKeys: "asdf"}, 3)
	assert.Zero(t, caps)
	assert.Zero(t, punct)
	assert.Empty(t, set)
}

func TestGenerateWeightedDecoratesWords(t *testing.T) {
	g := NewWithSeed(2, nil)
	words := g.GenerateWeighted([]string{"sad", "lad"}, 8, 1, 1, []rune{';'}, nil, 1)
	require.Len(t, words, 8)
	for _, w := range words {
		assert.Contains(t, []string{"Sad;", "Lad;"}, w)
	}
}

func TestGenerateDrillHardestUsesLevelPunctuation(t *testing.T) {
	g := NewWithSeed(4, nil)
	req := Request{
		Level:      model.Level{ID: 6, AllKeys: "asdfASDF;", TextSamples: []string{"sad dad fad"}},
		Mode:       model.ModeErrors,
		ErrorStats: map[string]int{"d": 3},
		Difficulty: 3,
	}
	text, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	for _, w := range strings.Fields(text) {
		for _, r := range w {
			assert.Contains(t, req.Level.AllKeys, string(r))
		}
	}
}

func TestGenerateWeightedEmptyPool(t *testing.T) {
	g := NewWithSeed(1, nil)
	assert.Nil(t, g.GenerateWeighted(nil, 5, 0, 0, nil, nil, 1))
}
