package metricscalculator

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// encodeWords maps each distinct word to a synthetic rune so word sequences
// can run through the rune-based levenshtein implementation. The same
// dictionary must encode both sequences for matches to line up.
func encodeWords(dict map[string]rune, words []string) []rune {
	encoded := make([]rune, len(words))
	for i, w := range words {
		r, ok := dict[w]
		if !ok {
			r = rune(len(dict) + 1)
			dict[w] = r
		}
		encoded[i] = r
	}
	return encoded
}

// CalculateWER computes the Word Error Rate of a recognized transcript
// against the expected text:
// (substitutions + insertions + deletions) / words in expected.
// Both inputs empty yields 0; an empty expected text with a non-empty
// transcript cannot be normalized and is reported as 1.0 with an error.
func CalculateWER(expected string, recognized string) (float64, error) {
	expectedWords := strings.Fields(expected)
	recognizedWords := strings.Fields(recognized)

	if len(expectedWords) == 0 {
		if len(recognizedWords) == 0 {
			return 0.0, nil
		}
		return 1.0, fmt.Errorf("expected text is empty, cannot normalize WER (%d recognized words)", len(recognizedWords))
	}

	dict := make(map[string]rune)
	distance := levenshtein.DistanceForStrings(
		encodeWords(dict, expectedWords),
		encodeWords(dict, recognizedWords),
		levenshtein.DefaultOptions,
	)
	return float64(distance) / float64(len(expectedWords)), nil
}

// CalculateCER computes the Character Error Rate over runes, with the same
// normalization rule and empty-input handling as CalculateWER.
func CalculateCER(expected string, recognized string) (float64, error) {
	expectedRunes := []rune(expected)
	recognizedRunes := []rune(recognized)

	if len(expectedRunes) == 0 {
		if len(recognizedRunes) == 0 {
			return 0.0, nil
		}
		return 1.0, fmt.Errorf("expected text is empty, cannot normalize CER (%d recognized characters)", len(recognizedRunes))
	}

	distance := levenshtein.DistanceForStrings(expectedRunes, recognizedRunes, levenshtein.DefaultOptions)
	return float64(distance) / float64(len(expectedRunes)), nil
}
