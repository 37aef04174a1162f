package vendoradapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

const (
	sarvamDefaultURL   = "https://api.sarvam.ai/speech-to-text"
	sarvamDefaultModel = "saarika:v2.5"
)

// bcp47Codes maps the platform's lowercase language tags to the BCP-47 codes
// the Saarika API expects.
var bcp47Codes = map[string]string{
	"hindi":     "hi-IN",
	"odia":      "od-IN",
	"english":   "en-IN",
	"gujarati":  "gu-IN",
	"malayalam": "ml-IN",
	"telugu":    "te-IN",
	"tamil":     "ta-IN",
	"bengali":   "bn-IN",
}

// SarvamASRAdapter implements the ASRAdapter interface for the Sarvam
// Saarika speech-to-text API.
type SarvamASRAdapter struct {
	MinioClient *objectstore.MinioClient
	HTTPClient  *http.Client
}

// NewSarvamASRAdapter creates a new instance of SarvamASRAdapter.
func NewSarvamASRAdapter(minioClient *objectstore.MinioClient) *SarvamASRAdapter {
	if minioClient == nil {
		log.Println("Warning: NewSarvamASRAdapter created with a nil MinioClient. File fetching will fail.")
	}
	return &SarvamASRAdapter{
		MinioClient: minioClient,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// sarvamResponse is the subset of the Saarika response the platform consumes.
type sarvamResponse struct {
	RequestID    string `json:"request_id"`
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}

// Recognize transcribes audio using the Sarvam Saarika API.
func (a *SarvamASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("SarvamASRAdapter: MinioClient is not initialized")
	}
	if !providerConfig.APIKey.Valid || providerConfig.APIKey.String == "" {
		return "", "", fmt.Errorf("Sarvam API subscription key is missing in provider configuration")
	}

	languageCode, ok := bcp47Codes[language]
	if !ok {
		return "", "", fmt.Errorf("unsupported language %q for Sarvam ASR", language)
	}

	endpoint := sarvamDefaultURL
	if providerConfig.APIEndpoint.Valid && providerConfig.APIEndpoint.String != "" {
		endpoint = providerConfig.APIEndpoint.String
	}
	model := providerConfig.OtherConfigValue("model")
	if model == "" {
		model = sarvamDefaultModel
	}

	// 1. Fetch audio content from MinIO
	audioBytes, err := a.MinioClient.GetFileBytes(ctx, audioObject)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch audio file '%s' from MinIO: %w", audioObject, err)
	}

	// 2. Build multipart form: file, model, language_code
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filepath.Base(audioObject))
	if err != nil {
		return "", "", fmt.Errorf("failed to create multipart file field: %w", err)
	}
	if _, err := fw.Write(audioBytes); err != nil {
		return "", "", fmt.Errorf("failed to write audio data to multipart form: %w", err)
	}
	if err := w.WriteField("model", model); err != nil {
		return "", "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := w.WriteField("language_code", languageCode); err != nil {
		return "", "", fmt.Errorf("failed to write language_code field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Sarvam request: %w", err)
	}
	req.Header.Set("api-subscription-key", providerConfig.APIKey.String)
	req.Header.Set("Content-Type", w.FormDataContentType())

	// 3. Execute request
	log.Printf("Sending recognition request to Sarvam API for %s (model=%s, language=%s)", audioObject, model, languageCode)
	startTime := time.Now()
	httpResp, err := a.HTTPClient.Do(req)
	latency := time.Since(startTime)
	log.Printf("Sarvam API call for %s completed in %v", audioObject, latency)

	if err != nil {
		return "", "", fmt.Errorf("failed to send request to Sarvam: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read Sarvam response body: %w", err)
	}
	rawResponse = string(respBody)

	if httpResp.StatusCode != http.StatusOK {
		log.Printf("Sarvam API Error: Status %s, Body: %s", httpResp.Status, rawResponse)
		return "", rawResponse, fmt.Errorf("Sarvam API request failed with status %s: %s", httpResp.Status, rawResponse)
	}

	// 4. Parse response
	var sr sarvamResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", rawResponse, fmt.Errorf("failed to parse Sarvam JSON response: %w. Response: %s", err, rawResponse)
	}

	log.Printf("SarvamASRAdapter: Successfully recognized text for '%s': %s", audioObject, sr.Transcript)
	return sr.Transcript, rawResponse, nil
}
