package sessionengine

import "strings"

// Score compares a recognized transcript against the expected crop name:
// lowercase both, trim leading/trailing whitespace, exact equality.
// No partial-match or edit-distance scoring; WER/CER are recorded separately
// as diagnostics and never influence the verdict.
func Score(expected, actual string) bool {
	return strings.TrimSpace(strings.ToLower(expected)) == strings.TrimSpace(strings.ToLower(actual))
}
