package vendoradapters

import (
	"context"
	"errors"

	"crop-asr-qa-platform/backend/internal/datastore"
)

// ErrRecognitionFailed marks a transcription collaborator failure (provider
// error, timeout, malformed response). Callers treat it as transient: the
// recording attempt stays retryable and no result is recorded.
var ErrRecognitionFailed = errors.New("recognition failed")

// ASRAdapter is the transcription collaborator boundary. Implementations
// transcribe audio stored under audioObject (an object key in audio storage)
// using the given language hint; providerConfig supplies API keys, endpoints,
// and provider-specific knobs. rawResponse preserves the exact vendor output
// for the result record.
type ASRAdapter interface {
	Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error)
}
