package stats

import "sort"

// CharCount pairs a character with its persisted error count.
type CharCount struct {
	Char  string
	Count int
}

// RankErrorChars orders characters by persisted error count, highest first,
// skipping characters with no outstanding errors.
func RankErrorChars(errorStats map[string]int) []CharCount {
	out := make([]CharCount, 0, len(errorStats))
	for ch, n := range errorStats {
		if n <= 0 {
			continue
		}
		out = append(out, CharCount{Char: ch, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Char < out[j].Char
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// SelectWeakChars selects the characters with the most persisted errors.
func SelectWeakChars(errorStats map[string]int, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	ranked := RankErrorChars(errorStats)
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}
	for i := 0; i < top; i++ {
		runes := []rune(ranked[i].Char)
		if len(runes) > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}
