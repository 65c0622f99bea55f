// Package engine turns key events into a scored typing session.
package engine

import (
	"unicode"
	"unicode/utf8"
)

// Outcome classifies one key event against the target text.
type Outcome int

const (
	// Ignored keys have no effect on the session.
	Ignored Outcome = iota
	// Correct keys match the target character at the cursor.
	Correct
	// Incorrect keys are printable characters that do not match.
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "ignored"
	}
}

// namedKeys are the multi-character key names that stand for a character.
// Every other named key (shift, alt, ctrl, capslock, arrows, backspace, ...)
// is ignored.
var namedKeys = map[string]rune{
	"space": ' ',
}

// KeyRune resolves a key name to the character it types.
func KeyRune(key string) (rune, bool) {
	if r, ok := namedKeys[key]; ok {
		return r, true
	}
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}

// Classify compares a key against target[cursor]. Keys pressed after the
// end of the text are ignored.
func Classify(target []rune, cursor int, key string) (Outcome, rune) {
	r, ok := KeyRune(key)
	if !ok || cursor < 0 || cursor >= len(target) {
		return Ignored, 0
	}
	if r == target[cursor] {
		return Correct, r
	}
	return Incorrect, r
}
