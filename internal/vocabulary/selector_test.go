package vocabulary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeVocab(serials ...int) []CropEntry {
	entries := make([]CropEntry, len(serials))
	for i, s := range serials {
		entries[i] = CropEntry{Serial: s, Name: "crop", Language: "english", Project: "dcs"}
	}
	return entries
}

func selectedSerials(selection []SelectedCrop) []int {
	out := make([]int, len(selection))
	for i, s := range selection {
		out[i] = s.Serial
	}
	return out
}

func TestSelectFilterPolicy(t *testing.T) {
	vocab := makeVocab(1, 2, 3, 4, 5)

	selection, err := Select(vocab, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, selectedSerials(selection))

	// Positions are 1-based within the selection, not the vocabulary.
	assert.Equal(t, 1, selection[0].Position)
	assert.Equal(t, 2, selection[1].Position)
}

func TestSelectFilterPolicyWithGaps(t *testing.T) {
	// Serials 10..14 requested, but 12 is missing: gap yields fewer crops, not an error.
	vocab := makeVocab(10, 11, 13, 14, 20)

	selection, err := Select(vocab, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 13, 14}, selectedSerials(selection))
}

func TestSelectFilterPolicyCapsAtCount(t *testing.T) {
	// Duplicated serials never push the selection past count.
	vocab := makeVocab(1, 1, 2, 2, 3)

	selection, err := Select(vocab, 1, 3)
	require.NoError(t, err)
	assert.Len(t, selection, 3)
	assert.Equal(t, []int{1, 1, 2}, selectedSerials(selection))
}

func TestSelectFilterPolicyTruncatesAtEnd(t *testing.T) {
	vocab := makeVocab(1, 2, 3)

	selection, err := Select(vocab, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, selectedSerials(selection))
}

func TestSelectSortsBeforeSelecting(t *testing.T) {
	vocab := makeVocab(5, 1, 4, 2, 3)

	selection, err := Select(vocab, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, selectedSerials(selection))
}

func TestSelectInvalidRanges(t *testing.T) {
	vocab := makeVocab(1, 2, 3)

	cases := []struct {
		name        string
		startSerial int
		count       int
	}{
		{"zero start", 0, 2},
		{"negative start", -1, 2},
		{"zero count", 1, 0},
		{"negative count", 1, -5},
		{"start beyond max serial", 4, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Select(vocab, tc.startSerial, tc.count)
			var rangeErr *InvalidRangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, tc.startSerial, rangeErr.StartSerial)
			assert.Equal(t, 3, rangeErr.MaxSerial)
		})
	}
}

func TestSelectEmptyResult(t *testing.T) {
	// startSerial within range but no serial falls inside the window.
	vocab := makeVocab(1, 10)

	_, err := Select(vocab, 3, 2)
	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
}

func TestSelectSlicePolicy(t *testing.T) {
	// Slice policy ignores serial values and cuts by sorted position.
	vocab := makeVocab(100, 200, 300, 400)

	selection, err := SelectWithPolicy(vocab, 2, 2, PolicySlice)
	require.NoError(t, err)
	assert.Equal(t, []int{200, 300}, selectedSerials(selection))
	assert.Equal(t, 1, selection[0].Position)
}

func TestSelectSlicePolicyClampsAtEnd(t *testing.T) {
	vocab := makeVocab(1, 2, 3)

	selection, err := SelectWithPolicy(vocab, 3, 10, PolicySlice)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, selectedSerials(selection))
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	vocab := makeVocab(3, 1, 2)

	_, err := Select(vocab, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, []int{vocab[0].Serial, vocab[1].Serial, vocab[2].Serial})
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("filter")
	require.NoError(t, err)
	assert.Equal(t, PolicyFilter, policy)

	policy, err = ParsePolicy("slice")
	require.NoError(t, err)
	assert.Equal(t, PolicySlice, policy)

	policy, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, policy)

	_, err = ParsePolicy("random")
	assert.Error(t, err)
}
