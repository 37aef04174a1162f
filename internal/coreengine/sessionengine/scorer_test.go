package sessionengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		expected string
		actual   string
		want     bool
	}{
		{"exact match", "Ash Gourd", "Ash Gourd", true},
		{"case insensitive", "Ash Gourd", "ash gourd", true},
		{"mixed case both sides", "ASH GOURD", "Ash gourd", true},
		{"leading and trailing whitespace", "  Ash Gourd \t", "ash gourd", true},
		{"different words", "Ash Gourd", "Bitter Gourd", false},
		{"internal whitespace differs", "Ash Gourd", "AshGourd", false},
		{"partial match rejected", "Ash Gourd", "Ash", false},
		{"both empty", "", "", true},
		{"empty actual", "Ash Gourd", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.expected, tc.actual))
			// Scoring is symmetric in its normalization.
			assert.Equal(t, tc.want, Score(tc.actual, tc.expected))
		})
	}
}
