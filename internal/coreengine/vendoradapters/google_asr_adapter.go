package vendoradapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

// GoogleASRAdapter implements the ASRAdapter interface for Google Cloud Speech-to-Text.
type GoogleASRAdapter struct {
	MinioClient *objectstore.MinioClient
}

// NewGoogleASRAdapter creates a new instance of GoogleASRAdapter.
func NewGoogleASRAdapter(minioClient *objectstore.MinioClient) *GoogleASRAdapter {
	if minioClient == nil {
		log.Println("Warning: NewGoogleASRAdapter created with a nil MinioClient. File fetching will fail.")
	}
	return &GoogleASRAdapter{MinioClient: minioClient}
}

// Recognize transcribes audio using Google Cloud Speech-to-Text.
func (a *GoogleASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("GoogleASRAdapter: MinioClient is not initialized")
	}

	// 1. Authentication: an explicit credentials file from the provider
	// config wins; otherwise the client library falls back to
	// GOOGLE_APPLICATION_CREDENTIALS.
	var opts []option.ClientOption
	if credsPath := providerConfig.OtherConfigValue("google_credentials_path"); credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}

	speechClient, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Google Speech client: %w", err)
	}
	defer speechClient.Close()

	// 2. Audio fetching
	audioContent, err := a.MinioClient.GetFileBytes(ctx, audioObject)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch audio file '%s' from MinIO: %w", audioObject, err)
	}

	// 3. Recognition config. Recordings are captured as 16 kHz mono; the
	// encoding can be overridden per provider config for other upload paths.
	encoding := speechpb.RecognitionConfig_LINEAR16
	switch strings.ToUpper(providerConfig.OtherConfigValue("encoding")) {
	case "FLAC":
		encoding = speechpb.RecognitionConfig_FLAC
	case "MP3":
		encoding = speechpb.RecognitionConfig_MP3
	case "OGG_OPUS":
		encoding = speechpb.RecognitionConfig_OGG_OPUS
	}

	languageCode := language
	if code, ok := bcp47Codes[language]; ok {
		languageCode = code
	}

	config := &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            16000,
		LanguageCode:               languageCode,
		EnableAutomaticPunctuation: true,
	}
	if model := providerConfig.OtherConfigValue("model"); model != "" {
		config.Model = model
	}

	req := &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioContent},
		},
	}

	// 4. API call
	log.Printf("Sending recognition request to Google Speech-to-Text API for %s", audioObject)
	startTime := time.Now()
	resp, err := speechClient.Recognize(ctx, req)
	latency := time.Since(startTime)
	log.Printf("Google Speech-to-Text API call for %s completed in %v", audioObject, latency)

	if err != nil {
		rawResponse = fmt.Sprintf(`{"error": %q}`, err.Error())
		return "", rawResponse, fmt.Errorf("Google Speech API recognition failed: %w", err)
	}

	// 5. Response handling: concatenate top alternatives across results.
	var transcriptBuilder strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			if transcriptBuilder.Len() > 0 {
				transcriptBuilder.WriteString(" ")
			}
			transcriptBuilder.WriteString(result.Alternatives[0].Transcript)
		}
	}
	recognizedText = strings.TrimSpace(transcriptBuilder.String())

	rawResponseBytes, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		log.Printf("Error marshalling Google Speech API response to JSON: %v", marshalErr)
		rawResponse = fmt.Sprintf(`{"error_marshalling_response": %q}`, marshalErr.Error())
	} else {
		rawResponse = string(rawResponseBytes)
	}

	log.Printf("GoogleASRAdapter: Successfully recognized text for '%s': %s", audioObject, recognizedText)
	return recognizedText, rawResponse, nil
}
