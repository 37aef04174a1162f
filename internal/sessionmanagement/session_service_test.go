package sessionmanagement

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-asr-qa-platform/backend/internal/coreengine/sessionengine"
	"crop-asr-qa-platform/backend/internal/coreengine/vendoradapters"
	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
	"crop-asr-qa-platform/backend/internal/vocabulary"
)

func TestExportFilename(t *testing.T) {
	date := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		qaName string
		want   string
	}{
		{"Asha", "crop-asr-results-Asha-2026-03-15.json"},
		{"Asha Kumari", "crop-asr-results-Asha-Kumari-2026-03-15.json"},
		{"  Asha   Kumari  ", "crop-asr-results-Asha-Kumari-2026-03-15.json"},
		{"Asha\tKumari", "crop-asr-results-Asha-Kumari-2026-03-15.json"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ExportFilename(tc.qaName, date))
	}
}

func newTestLiveSession(t *testing.T) *LiveSession {
	t.Helper()
	engine, err := sessionengine.New(sessionengine.Config{
		QAName:   "Asha",
		Project:  "dcs",
		Language: "english",
		Selection: []vocabulary.SelectedCrop{
			{CropEntry: vocabulary.CropEntry{Serial: 1, Name: "Okra", Language: "english", Project: "dcs"}, Position: 1},
		},
	})
	require.NoError(t, err)

	return &LiveSession{
		Session: &datastore.TestSession{
			ID:       "test-session",
			QAName:   "Asha",
			Project:  "dcs",
			Language: "english",
			Status:   datastore.SessionStatusActive,
		},
		Engine:  engine,
		Adapter: &vendoradapters.MockASRAdapter{Default: "okra"},
	}
}

func TestProcessRecordingStorageFailureReleasesSlot(t *testing.T) {
	// An uninitialized object store fails the upload before anything reaches
	// the recognizer; the repetition slot must come back for a retry.
	svc := NewSessionService(&objectstore.MinioClient{}, &vocabulary.MemorySource{})
	live := newTestLiveSession(t)

	require.NoError(t, live.Engine.BeginRecording())

	_, err := svc.ProcessRecording(context.Background(), live, "utterance.wav", strings.NewReader("audio"), 5, "audio/wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store recording")

	assert.Equal(t, sessionengine.StateIdle, live.Engine.State())
	assert.Equal(t, 0, live.Engine.Summary().TotalRecordings)
}

func TestProcessRecordingRequiresRecordingState(t *testing.T) {
	svc := NewSessionService(&objectstore.MinioClient{}, &vocabulary.MemorySource{})
	live := newTestLiveSession(t)

	// No beginRecording happened; the submit must be rejected up front.
	_, err := svc.ProcessRecording(context.Background(), live, "utterance.wav", strings.NewReader("audio"), 5, "audio/wav")
	assert.ErrorIs(t, err, sessionengine.ErrNotReady)
}

func TestAbortEndsSession(t *testing.T) {
	svc := NewSessionService(&objectstore.MinioClient{}, &vocabulary.MemorySource{})
	live := newTestLiveSession(t)

	svc.Abort(live)
	assert.Equal(t, sessionengine.StateCompleted, live.Engine.State())
	assert.Equal(t, datastore.SessionStatusAborted, live.Session.Status)
}
