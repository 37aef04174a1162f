package vendoradapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	mscommon "github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

// MicrosoftASRAdapter implements the ASRAdapter interface for Azure Cognitive Speech Services.
type MicrosoftASRAdapter struct {
	MinioClient *objectstore.MinioClient
}

// NewMicrosoftASRAdapter creates a new instance of MicrosoftASRAdapter.
func NewMicrosoftASRAdapter(minioClient *objectstore.MinioClient) *MicrosoftASRAdapter {
	if minioClient == nil {
		log.Println("Warning: NewMicrosoftASRAdapter created with a nil MinioClient. File fetching will fail.")
	}
	return &MicrosoftASRAdapter{MinioClient: minioClient}
}

// Recognize transcribes audio using Azure Cognitive Speech Services.
func (a *MicrosoftASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("MicrosoftASRAdapter: MinioClient is not initialized")
	}

	if !providerConfig.APIKey.Valid || providerConfig.APIKey.String == "" {
		return "", "", fmt.Errorf("Azure Speech API key is missing in provider configuration")
	}
	subscriptionKey := providerConfig.APIKey.String

	region := providerConfig.OtherConfigValue("azure_region")
	if region == "" {
		return "", "", fmt.Errorf("Azure Speech region is missing in provider configuration (other_configs.azure_region)")
	}

	// 1. Speech config
	speechConfig, err := speech.NewSpeechConfigFromSubscription(subscriptionKey, region)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Azure SpeechConfig: %w", err)
	}
	defer speechConfig.Close()
	languageCode := language
	if code, ok := bcp47Codes[language]; ok {
		languageCode = code
	}
	speechConfig.SetSpeechRecognitionLanguage(languageCode)

	// 2. Audio fetching. Utterance recordings are short, so reading the
	// whole object and feeding a push stream keeps the SDK wiring simple.
	audioBytes, err := a.MinioClient.GetFileBytes(ctx, audioObject)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch audio file '%s' from MinIO: %w", audioObject, err)
	}

	format, err := audio.GetDefaultInputFormat()
	if err != nil {
		return "", "", fmt.Errorf("failed to get default audio input format: %w", err)
	}
	defer format.Close()

	pushStream, err := audio.CreatePushAudioInputStreamFromFormat(format)
	if err != nil {
		return "", "", fmt.Errorf("failed to create push audio input stream: %w", err)
	}
	defer pushStream.Close()

	if err := pushStream.Write(audioBytes); err != nil {
		return "", "", fmt.Errorf("failed to write audio data to push stream: %w", err)
	}
	pushStream.CloseStream()

	audioConfig, err := audio.NewAudioConfigFromStreamInput(pushStream)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Azure AudioConfig: %w", err)
	}
	defer audioConfig.Close()

	// 3. Recognizer
	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Azure SpeechRecognizer: %w", err)
	}
	defer recognizer.Close()

	// 4. Recognition
	log.Printf("Sending recognition request to Azure Speech Service for %s", audioObject)
	startTime := time.Now()
	task := recognizer.RecognizeOnceAsync()

	var outcome speech.SpeechRecognitionOutcome
	select {
	case outcome = <-task:
	case <-ctx.Done():
		return "", `{"error": "Recognition cancelled"}`, fmt.Errorf("Azure Speech API recognition cancelled: %w", ctx.Err())
	case <-time.After(60 * time.Second):
		return "", `{"error": "Recognition timed out after 60 seconds"}`, fmt.Errorf("Azure Speech API recognition timed out")
	}
	latency := time.Since(startTime)
	log.Printf("Azure Speech Service call for %s completed in %v", audioObject, latency)
	defer outcome.Close()

	// 5. Response handling
	if outcome.Error != nil {
		rawResponse = fmt.Sprintf(`{"error": %q}`, outcome.Error.Error())
		return "", rawResponse, fmt.Errorf("Azure Speech API recognition error: %w", outcome.Error)
	}

	result := outcome.Result
	switch result.Reason {
	case mscommon.RecognizedSpeech:
		recognizedText = result.Text
		rawResponseBytes, marshalErr := json.Marshal(map[string]interface{}{
			"text":     result.Text,
			"duration": result.Duration.String(),
			"offset":   result.Offset.String(),
		})
		if marshalErr != nil {
			rawResponse = fmt.Sprintf(`{"text": %q}`, result.Text)
		} else {
			rawResponse = string(rawResponseBytes)
		}
		log.Printf("MicrosoftASRAdapter: Successfully recognized text for '%s': %s", audioObject, recognizedText)
		return recognizedText, rawResponse, nil
	case mscommon.NoMatch:
		rawResponse = `{"error": "No speech could be recognized", "reason": "NoMatch"}`
		return "", rawResponse, fmt.Errorf("no speech could be recognized from audio: %s", audioObject)
	default:
		rawResponse = fmt.Sprintf(`{"error": "Recognition failed", "reason": %d}`, result.Reason)
		return "", rawResponse, fmt.Errorf("Azure Speech API recognition failed with reason: %d", result.Reason)
	}
}
