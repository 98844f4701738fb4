package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  alice \n", "alice"},
		{"drops control characters", "al\x00ice\x07", "alice"},
		{"keeps inner spaces", "San Jose", "San Jose"},
		{"ascii at limit", strings.Repeat("a", maxNameLength), strings.Repeat("a", maxNameLength)},
		{"ascii over limit", strings.Repeat("a", maxNameLength+5), strings.Repeat("a", maxNameLength)},
		// 33 three-byte runes are 99 bytes; the next rune would straddle the limit.
		{"multibyte over limit", strings.Repeat("日", 40), strings.Repeat("日", 33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), maxNameLength)
		})
	}
}

func TestSanitizeNameMixedWidth(t *testing.T) {
	// One ASCII byte shifts every four-byte rune off the boundary.
	input := "x" + strings.Repeat("😀", 30)

	got := sanitizeName(input)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "x"+strings.Repeat("😀", 24), got)
}
