// Package generator builds typing text for practice sessions.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/stats"
	"github.com/verte-zerg/keykids/internal/wordlist"
)

// ErrNoSamples is returned when a level has no text to draw from.
var ErrNoSamples = errors.New("level has no text samples")

const (
	weakTop      = 5
	weakFactor   = 3.0
	drillWords   = 12
	maxDifficult = 3

	drillCapsPct  = 0.25
	drillPunctPct = 0.2
)

// Request describes the text a session needs.
type Request struct {
	Level      model.Level
	Mode       model.Mode
	ErrorStats map[string]int
	Difficulty int
}

// Source produces practice text. Implementations may be slow or fail.
type Source interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Generator produces randomized typing text from level samples and an
// optional word list.
// Generate is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	words []string
}

// New returns a Generator seeded with the current time. Extra words are
// mixed into error drills when they only use the level's keys.
func New(words []string) *Generator {
	return NewWithSeed(time.Now().UnixNano(), words)
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64, words []string) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), words: words}
}

// Generate implements Source.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Level.TextSamples) == 0 {
		return "", ErrNoSamples
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	switch req.Mode {
	case model.ModeTimed:
		return g.timed(req), nil
	case model.ModeErrors:
		return g.drill(req), nil
	case model.ModeLesson, "":
		return g.lesson(req), nil
	default:
		return "", fmt.Errorf("unknown mode %q", req.Mode)
	}
}

func (g *Generator) lesson(req Request) string {
	samples := req.Level.TextSamples
	parts := make([]string, 0, difficulty(req.Difficulty))
	for i := 0; i < difficulty(req.Difficulty); i++ {
		parts = append(parts, samples[g.rnd.Intn(len(samples))])
	}
	return strings.Join(parts, " ")
}

func (g *Generator) timed(req Request) string {
	samples := append([]string(nil), req.Level.TextSamples...)
	g.rnd.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	return strings.Join(samples, " ")
}

func (g *Generator) drill(req Request) string {
	weakSet := stats.SelectWeakChars(req.ErrorStats, weakTop)
	if len(weakSet) == 0 {
		return g.lesson(req)
	}
	pool := g.drillPool(req.Level, weakSet)
	count := drillWords * difficulty(req.Difficulty)
	capsPct, punctPct, punctSet := drillDecor(req.Level, req.Difficulty)
	words := g.GenerateWeighted(pool, count, capsPct, punctPct, punctSet, weakSet, weakFactor)
	return strings.Join(words, " ")
}

// drillPool collects the level's words. When none of them contains a weak
// character, words using the level keys plus the weak characters are added,
// and failing that short runs of each weak character.
func (g *Generator) drillPool(level model.Level, weakSet map[rune]struct{}) []string {
	seen := map[string]struct{}{}
	var pool []string
	add := func(w string) {
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	for _, sample := range level.TextSamples {
		for _, w := range strings.Fields(sample) {
			add(w)
		}
	}
	for _, w := range wordlist.Filter(g.words, wordlist.FilterForKeys(level.AllKeys)) {
		add(w)
	}
	if containsWeak(pool, weakSet) {
		return pool
	}

	weak := weakRunes(weakSet)
	for _, w := range wordlist.Filter(g.words, wordlist.FilterForKeys(level.AllKeys+string(weak))) {
		add(w)
	}
	if containsWeak(pool, weakSet) {
		return pool
	}
	for _, r := range weak {
		add(strings.Repeat(string(r), 3))
	}
	return pool
}

func containsWeak(words []string, weakSet map[rune]struct{}) bool {
	for _, w := range words {
		for _, r := range w {
			if _, ok := weakSet[r]; ok {
				return true
			}
		}
	}
	return false
}

// weakRunes returns the printable weak characters in a stable order.
func weakRunes(weakSet map[rune]struct{}) []rune {
	out := make([]rune, 0, len(weakSet))
	for r := range weakSet {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			continue
		}
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// drillDecor returns the capitalization and punctuation settings for a
// drill. Only the hardest difficulty decorates words, using keys the level
// already teaches.
func drillDecor(level model.Level, diff int) (capsPct, punctPct float64, punctSet []rune) {
	if difficulty(diff) < maxDifficult {
		return 0, 0, nil
	}
	for _, r := range level.AllKeys {
		switch {
		case unicode.IsUpper(r):
			capsPct = drillCapsPct
		case unicode.IsPunct(r) && !slices.Contains(punctSet, r):
			punctSet = append(punctSet, r)
		}
	}
	if len(punctSet) > 0 {
		punctPct = drillPunctPct
	}
	return capsPct, punctPct, punctSet
}

// GenerateWeighted selects words with a bias toward weak characters.
func (g *Generator) GenerateWeighted(words []string, count int, capsPct, punctPct float64, punctSet []rune, weakSet map[rune]struct{}, factor float64) []string {
	if len(words) == 0 {
		return nil
	}
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(words) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		word := words[idx]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

func difficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > maxDifficult {
		return maxDifficult
	}
	return d
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
