package sessionengine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-asr-qa-platform/backend/internal/vocabulary"
)

func testSelection(names ...string) []vocabulary.SelectedCrop {
	selection := make([]vocabulary.SelectedCrop, len(names))
	for i, name := range names {
		selection[i] = vocabulary.SelectedCrop{
			CropEntry: vocabulary.CropEntry{
				Serial:   i + 1,
				Code:     "700100",
				Name:     name,
				Language: "english",
				Project:  "dcs",
			},
			Position: i + 1,
		}
	}
	return selection
}

func newTestEngine(t *testing.T, reps int, names ...string) *Engine {
	t.Helper()
	engine, err := New(Config{
		QAName:              "Asha",
		Project:             "dcs",
		Language:            "english",
		Selection:           testSelection(names...),
		RepetitionsRequired: reps,
	})
	require.NoError(t, err)
	return engine
}

// recordOnce drives one full Idle -> Recording -> Processing -> transcript cycle.
func recordOnce(t *testing.T, engine *Engine, text string) UtteranceResult {
	t.Helper()
	require.NoError(t, engine.BeginRecording())
	attempt, err := engine.StopRecording()
	require.NoError(t, err)
	result, err := engine.OnTranscript(attempt, text)
	require.NoError(t, err)
	return result
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{QAName: "Asha"})
	assert.Error(t, err, "empty selection must be rejected")

	_, err = New(Config{Selection: testSelection("Okra")})
	assert.Error(t, err, "empty qa name must be rejected")
}

func TestNewDefaultsRepetitions(t *testing.T) {
	engine := newTestEngine(t, 0, "Okra")
	assert.Equal(t, DefaultRepetitionsRequired, engine.RepetitionsRequired())
}

func TestRecordingCycleStates(t *testing.T) {
	engine := newTestEngine(t, 2, "Okra")
	assert.Equal(t, StateIdle, engine.State())

	require.NoError(t, engine.BeginRecording())
	assert.Equal(t, StateRecording, engine.State())

	attempt, err := engine.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, engine.State())

	result, err := engine.OnTranscript(attempt, "okra")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.RecordingNumber)
	assert.Equal(t, StateIdle, engine.State(), "one of two repetitions done, back to Idle")
}

func TestRepetitionsLeadToAwaitingAdvance(t *testing.T) {
	engine := newTestEngine(t, 5, "Okra", "Brinjal")

	for i := 0; i < 5; i++ {
		result := recordOnce(t, engine, "okra")
		assert.Equal(t, i+1, result.RecordingNumber)
	}
	assert.Equal(t, StateAwaitingAdvance, engine.State())

	// No further recording until the operator advances.
	err := engine.BeginRecording()
	assert.True(t, errors.Is(err, ErrNotReady))

	require.NoError(t, engine.Advance())
	assert.Equal(t, StateIdle, engine.State())

	crop, ok := engine.CurrentCrop()
	require.True(t, ok)
	assert.Equal(t, "Brinjal", crop.Name)
}

func TestAdvancePastLastCropCompletes(t *testing.T) {
	engine := newTestEngine(t, 1, "Okra")

	recordOnce(t, engine, "okra")
	assert.Equal(t, StateAwaitingAdvance, engine.State())

	require.NoError(t, engine.Advance())
	assert.Equal(t, StateCompleted, engine.State())

	_, ok := engine.CurrentCrop()
	assert.False(t, ok)

	err := engine.BeginRecording()
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestInvalidTransitions(t *testing.T) {
	engine := newTestEngine(t, 2, "Okra")

	_, err := engine.StopRecording()
	assert.True(t, errors.Is(err, ErrNotReady), "stop without begin")

	err = engine.Advance()
	assert.True(t, errors.Is(err, ErrNotReady), "advance from Idle")

	require.NoError(t, engine.BeginRecording())
	err = engine.BeginRecording()
	assert.True(t, errors.Is(err, ErrNotReady), "begin while already recording")
}

func TestTranscriptErrorRetriesSlot(t *testing.T) {
	engine := newTestEngine(t, 2, "Okra")

	require.NoError(t, engine.BeginRecording())
	attempt, err := engine.StopRecording()
	require.NoError(t, err)

	require.NoError(t, engine.OnTranscriptError(attempt))
	assert.Equal(t, StateIdle, engine.State())

	_, repetitionCount := engine.Progress()
	assert.Equal(t, 0, repetitionCount, "failed recognition must not consume the slot")
	assert.Equal(t, 0, engine.Summary().TotalRecordings)

	// The same slot succeeds on retry.
	result := recordOnce(t, engine, "okra")
	assert.Equal(t, 1, result.RecordingNumber)
}

func TestAbortDropsLateTranscript(t *testing.T) {
	engine := newTestEngine(t, 5, "Okra")

	recordOnce(t, engine, "okra")

	require.NoError(t, engine.BeginRecording())
	attempt, err := engine.StopRecording()
	require.NoError(t, err)

	// Abort lands while the transcription is still in flight.
	engine.Abort()
	assert.Equal(t, StateCompleted, engine.State())

	_, err = engine.OnTranscript(attempt, "okra")
	assert.True(t, errors.Is(err, ErrStaleTranscript))

	// The pre-abort result is preserved; the late one was dropped.
	assert.Equal(t, 1, engine.Summary().TotalRecordings)
	assert.Equal(t, StateCompleted, engine.State())
}

func TestStaleAttemptToken(t *testing.T) {
	engine := newTestEngine(t, 3, "Okra")

	require.NoError(t, engine.BeginRecording())
	first, err := engine.StopRecording()
	require.NoError(t, err)
	require.NoError(t, engine.OnTranscriptError(first))

	require.NoError(t, engine.BeginRecording())
	second, err := engine.StopRecording()
	require.NoError(t, err)

	// The superseded token no longer resolves.
	_, err = engine.OnTranscript(first, "okra")
	assert.True(t, errors.Is(err, ErrStaleTranscript))

	// Zero is never a valid token.
	_, err = engine.OnTranscript(0, "okra")
	assert.True(t, errors.Is(err, ErrStaleTranscript))

	_, err = engine.OnTranscript(second, "okra")
	assert.NoError(t, err)
}

func TestResultFieldsDenormalized(t *testing.T) {
	engine := newTestEngine(t, 1, "Ash Gourd")

	result := recordOnce(t, engine, "ash gourd")
	assert.Equal(t, 1, result.CropID)
	assert.Equal(t, 1, result.CropSerial)
	assert.Equal(t, "700100", result.CropCode)
	assert.Equal(t, "Ash Gourd", result.CropName)
	assert.Equal(t, "Ash Gourd", result.Expected)
	assert.Equal(t, "ash gourd", result.Actual)
	assert.True(t, result.Correct)
	assert.Equal(t, "Asha", result.QAName)
	assert.Equal(t, "dcs", result.Project)
	assert.Equal(t, "english", result.Language)
	assert.False(t, result.Timestamp.IsZero())
}

func TestSummaryMath(t *testing.T) {
	engine := newTestEngine(t, 5, "Okra", "Brinjal")

	// Empty session: all-zero summary aside from the crop total.
	s := engine.Summary()
	assert.Equal(t, Summary{TotalCrops: 2}, s)

	// 5 correct for crop one, then 2 attempts for crop two (1 correct, 1 wrong).
	for i := 0; i < 5; i++ {
		recordOnce(t, engine, "okra")
	}
	require.NoError(t, engine.Advance())
	recordOnce(t, engine, "brinjal")
	recordOnce(t, engine, "wrong")

	s = engine.Summary()
	assert.Equal(t, 2, s.TotalCrops)
	assert.Equal(t, 7, s.TotalRecordings)
	// ceil(7/5) = 2 crops touched.
	assert.Equal(t, 2, s.CompletedItems)
	// 6 of 7 correct = 85.71... rounds to 86.
	assert.Equal(t, 86, s.Accuracy)
}

func TestSummaryAccuracyRounding(t *testing.T) {
	engine := newTestEngine(t, 3, "Okra")

	recordOnce(t, engine, "okra")
	recordOnce(t, engine, "wrong")
	recordOnce(t, engine, "wrong")

	// 1 of 3 correct = 33.33... rounds to 33.
	assert.Equal(t, 33, engine.Summary().Accuracy)
}

func TestExportSnapshot(t *testing.T) {
	engine := newTestEngine(t, 2, "Okra")
	recordOnce(t, engine, "okra")

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	export := engine.Export(now)

	assert.Equal(t, "Asha", export.QAName)
	assert.Equal(t, now, export.ExportTimestamp)
	assert.Equal(t, 1, export.TotalRecordings)
	require.Len(t, export.Results, 1)

	// The snapshot is a copy: mutating it must not leak into the session.
	export.Results[0].Actual = "tampered"
	fresh := engine.Results()
	assert.Equal(t, "okra", fresh[0].Actual)

	// Exporting does not end or reset the session.
	assert.Equal(t, StateIdle, engine.State())
	assert.Equal(t, 1, engine.Summary().TotalRecordings)
}

func TestExportPayloadFieldNames(t *testing.T) {
	engine := newTestEngine(t, 1, "Okra")
	recordOnce(t, engine, "okra")

	payload, err := json.Marshal(engine.Export(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, `"exportTimestamp"`)
	assert.Contains(t, body, `"completedCrops"`)
	assert.Contains(t, body, `"totalRecordings"`)
	assert.Contains(t, body, `"qaName"`)
}

func TestAbortPreservesResults(t *testing.T) {
	engine := newTestEngine(t, 5, "Okra", "Brinjal")

	recordOnce(t, engine, "okra")
	recordOnce(t, engine, "wrong")
	engine.Abort()

	results := engine.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 2, engine.Summary().TotalRecordings)
	assert.Equal(t, 50, engine.Summary().Accuracy)
}
