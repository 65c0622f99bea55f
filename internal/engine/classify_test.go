package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	target := []rune("ab c")
	cases := []struct {
		name   string
		cursor int
		key    string
		want   Outcome
	}{
		{"match", 0, "a", Correct},
		{"mismatch", 0, "s", Incorrect},
		{"case matters", 0, "A", Incorrect},
		{"named space", 2, "space", Correct},
		{"literal space", 2, " ", Correct},
		{"space mismatch", 1, "space", Incorrect},
		{"shift", 0, "shift", Ignored},
		{"capslock", 0, "capslock", Ignored},
		{"arrow", 0, "left", Ignored},
		{"backspace", 1, "backspace", Ignored},
		{"ctrl combo", 0, "ctrl+a", Ignored},
		{"alt combo", 0, "alt+a", Ignored},
		{"control char", 0, "\x01", Ignored},
		{"past end", 4, "c", Ignored},
		{"empty key", 0, "", Ignored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := Classify(target, tc.cursor, tc.key)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeyRuneUnicode(t *testing.T) {
	r, ok := KeyRune("é")
	assert.True(t, ok)
	assert.Equal(t, 'é', r)
}
