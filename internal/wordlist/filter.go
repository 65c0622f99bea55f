// Package wordlist loads and filters word lists.
package wordlist

import "strings"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForKeys keeps words typed using only the given keys. An empty key
// set keeps lowercase ASCII words.
func FilterForKeys(keys string) FilterFunc {
	if keys == "" {
		return filterEnglishASCII
	}
	allowed := make(map[rune]struct{}, len(keys))
	for _, r := range keys {
		allowed[r] = struct{}{}
	}
	return func(word string) bool {
		if word == "" {
			return false
		}
		for _, r := range word {
			if _, ok := allowed[r]; !ok {
				return false
			}
		}
		return true
	}
}

// Filter returns the words accepted by keep.
func Filter(words []string, keep FilterFunc) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if keep(strings.TrimSpace(w)) {
			out = append(out, strings.TrimSpace(w))
		}
	}
	return out
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
