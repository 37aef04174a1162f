package vocabulary

import (
	"fmt"
	"sort"
)

// SelectionPolicy names the rule mapping (startSerial, count) to a concrete
// sub-sequence of the vocabulary. Two policies have been in observed use;
// they differ when serials have gaps or duplicates.
type SelectionPolicy string

const (
	// PolicyFilter selects entries whose serial satisfies
	// startSerial <= serial < startSerial+count, ascending, capped at count.
	// Robust to missing or duplicated serials; this is the default.
	PolicyFilter SelectionPolicy = "filter"

	// PolicySlice sorts ascending by serial and takes a contiguous slice of
	// count entries starting at position startSerial-1 (1-based), regardless
	// of the serial values themselves.
	PolicySlice SelectionPolicy = "slice"
)

// DefaultPolicy is applied when a session does not name a policy explicitly.
const DefaultPolicy = PolicyFilter

// ParsePolicy maps a request string to a SelectionPolicy.
func ParsePolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case PolicyFilter, PolicySlice:
		return SelectionPolicy(s), nil
	case "":
		return DefaultPolicy, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q (accepted: %q, %q)", s, PolicyFilter, PolicySlice)
	}
}

// InvalidRangeError reports a bad (startSerial, count) request against a vocabulary.
type InvalidRangeError struct {
	StartSerial int
	Count       int
	MaxSerial   int
	Reason      string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range (start=%d, count=%d, max serial=%d): %s",
		e.StartSerial, e.Count, e.MaxSerial, e.Reason)
}

// SelectedCrop is one vocabulary item chosen for a session, paired with its
// stable 1-based position within the selection (used downstream as cropId).
type SelectedCrop struct {
	CropEntry
	Position int `json:"position"`
}

// Select derives the ordered sub-sequence to test in one session under the
// default policy. Deterministic and pure; the input slice is not mutated.
func Select(vocab []CropEntry, startSerial, count int) ([]SelectedCrop, error) {
	return SelectWithPolicy(vocab, startSerial, count, DefaultPolicy)
}

// SelectWithPolicy derives the session selection under an explicit policy.
// Fails with *InvalidRangeError when startSerial < 1, count < 1, startSerial
// exceeds the maximum available serial, or the selection comes out empty.
func SelectWithPolicy(vocab []CropEntry, startSerial, count int, policy SelectionPolicy) ([]SelectedCrop, error) {
	maxSerial := 0
	for _, c := range vocab {
		if c.Serial > maxSerial {
			maxSerial = c.Serial
		}
	}

	if startSerial < 1 {
		return nil, &InvalidRangeError{startSerial, count, maxSerial, "start serial must be >= 1"}
	}
	if count < 1 {
		return nil, &InvalidRangeError{startSerial, count, maxSerial, "count must be a positive integer"}
	}
	if startSerial > maxSerial {
		return nil, &InvalidRangeError{startSerial, count, maxSerial, "start serial exceeds maximum available serial"}
	}

	sorted := make([]CropEntry, len(vocab))
	copy(sorted, vocab)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Serial < sorted[j].Serial })

	var picked []CropEntry
	switch policy {
	case PolicySlice:
		lo := startSerial - 1
		if lo > len(sorted) {
			lo = len(sorted)
		}
		hi := lo + count
		if hi > len(sorted) {
			hi = len(sorted)
		}
		picked = sorted[lo:hi]
	default: // PolicyFilter
		for _, c := range sorted {
			if c.Serial >= startSerial && c.Serial < startSerial+count {
				picked = append(picked, c)
			}
			if len(picked) == count {
				break
			}
		}
	}

	if len(picked) == 0 {
		return nil, &InvalidRangeError{startSerial, count, maxSerial, "no crops found for the selected range"}
	}

	selection := make([]SelectedCrop, len(picked))
	for i, c := range picked {
		selection[i] = SelectedCrop{CropEntry: c, Position: i + 1}
	}
	return selection, nil
}
