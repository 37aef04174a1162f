package vendoradapters

import (
	"context"
	"fmt"

	"crop-asr-qa-platform/backend/internal/datastore"
)

// MockASRAdapter is a deterministic test double for the transcription
// boundary. It returns a canned transcript per audio object (or a fixed
// error), never random output; production code paths only reach it when a
// provider config explicitly names "MockASR".
type MockASRAdapter struct {
	// Transcripts maps audio object keys to the transcript to return.
	// Objects not in the map fall back to Default.
	Transcripts map[string]string
	Default     string
	// Err, when set, is returned for every call.
	Err error
}

// Recognize returns the configured transcript for the audio object.
func (m *MockASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (string, string, error) {
	if m.Err != nil {
		return "", fmt.Sprintf(`{"error": %q}`, m.Err.Error()), m.Err
	}

	text := m.Default
	if m.Transcripts != nil {
		if t, ok := m.Transcripts[audioObject]; ok {
			text = t
		}
	}

	raw := fmt.Sprintf(`{"transcript": %q, "language": %q, "simulated": true}`, text, language)
	return text, raw, nil
}
