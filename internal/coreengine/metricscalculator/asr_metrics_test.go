package metricscalculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWER(t *testing.T) {
	cases := []struct {
		name       string
		expected   string
		recognized string
		want       float64
	}{
		{"identical", "ash gourd", "ash gourd", 0.0},
		{"one substitution of two words", "ash gourd", "bitter gourd", 0.5},
		{"all wrong", "ash gourd", "bitter melon", 1.0},
		{"deletion", "ash gourd", "ash", 0.5},
		{"insertion", "ash", "ash gourd", 1.0},
		{"both empty", "", "", 0.0},
		{"empty recognized", "ash gourd", "", 1.0},
		{"whitespace only recognized", "ash gourd", "   ", 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wer, err := CalculateWER(tc.expected, tc.recognized)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, wer, 1e-9)
		})
	}
}

func TestCalculateWEREmptyExpected(t *testing.T) {
	wer, err := CalculateWER("", "ash gourd")
	assert.Error(t, err)
	assert.InDelta(t, 1.0, wer, 1e-9)
}

func TestCalculateCER(t *testing.T) {
	cases := []struct {
		name       string
		expected   string
		recognized string
		want       float64
	}{
		{"identical", "okra", "okra", 0.0},
		{"one substitution", "okra", "okrb", 0.25},
		{"deletion", "okra", "okr", 0.25},
		{"both empty", "", "", 0.0},
		{"devanagari expected", "भिंडी", "भिंडी", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cer, err := CalculateCER(tc.expected, tc.recognized)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, cer, 1e-9)
		})
	}
}

func TestCalculateCEREmptyExpected(t *testing.T) {
	cer, err := CalculateCER("", "okra")
	assert.Error(t, err)
	assert.InDelta(t, 1.0, cer, 1e-9)
}

func TestCERCanExceedOne(t *testing.T) {
	// More insertions than reference characters pushes CER past 1.0.
	cer, err := CalculateCER("ab", "wxyz")
	require.NoError(t, err)
	assert.Greater(t, cer, 1.0)
}
