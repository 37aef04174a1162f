package vendoradapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

const deepgramBaseURL = "https://api.deepgram.com/v1/listen"

// DeepgramASRAdapter implements the ASRAdapter interface for Deepgram.
type DeepgramASRAdapter struct {
	MinioClient *objectstore.MinioClient
	HTTPClient  *http.Client
}

// NewDeepgramASRAdapter creates a new instance of DeepgramASRAdapter.
func NewDeepgramASRAdapter(minioClient *objectstore.MinioClient) *DeepgramASRAdapter {
	if minioClient == nil {
		log.Println("Warning: NewDeepgramASRAdapter created with a nil MinioClient. File fetching will fail.")
	}
	return &DeepgramASRAdapter{
		MinioClient: minioClient,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// deepgramResponse is the subset of Deepgram's JSON response we consume.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Recognize transcribes audio using the Deepgram API.
func (a *DeepgramASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("DeepgramASRAdapter: MinioClient is not initialized")
	}
	if !providerConfig.APIKey.Valid || providerConfig.APIKey.String == "" {
		return "", "", fmt.Errorf("Deepgram API key is missing in provider configuration")
	}
	apiKey := providerConfig.APIKey.String

	// 1. Fetch audio content from MinIO
	audioBytes, err := a.MinioClient.GetFileBytes(ctx, audioObject)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch audio file '%s' from MinIO: %w", audioObject, err)
	}

	// Content-Type inferred from the object extension; Deepgram also sniffs.
	contentType := mime.TypeByExtension(filepath.Ext(audioObject))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// 2. Construct URL with query parameters
	reqURL, err := url.Parse(deepgramBaseURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse Deepgram base URL: %w", err)
	}
	query := reqURL.Query()
	if language != "" {
		query.Set("language", language)
	}
	if model := providerConfig.OtherConfigValue("model"); model != "" {
		query.Set("model", model)
	}
	reqURL.RawQuery = query.Encode()

	// 3. Create and execute request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(audioBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to create Deepgram request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	log.Printf("Sending recognition request to Deepgram API for %s", audioObject)
	startTime := time.Now()
	httpResp, err := a.HTTPClient.Do(req)
	latency := time.Since(startTime)
	log.Printf("Deepgram API call for %s completed in %v", audioObject, latency)

	if err != nil {
		return "", "", fmt.Errorf("failed to send request to Deepgram: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read Deepgram response body: %w", err)
	}
	rawResponse = string(respBody)

	if httpResp.StatusCode != http.StatusOK {
		log.Printf("Deepgram API Error: Status %s, Body: %s", httpResp.Status, rawResponse)
		return "", rawResponse, fmt.Errorf("Deepgram API request failed with status %s: %s", httpResp.Status, rawResponse)
	}

	// 4. Parse response
	var dg deepgramResponse
	if err := json.Unmarshal(respBody, &dg); err != nil {
		return "", rawResponse, fmt.Errorf("failed to parse Deepgram JSON response: %w. Response: %s", err, rawResponse)
	}

	if len(dg.Results.Channels) > 0 && len(dg.Results.Channels[0].Alternatives) > 0 {
		recognizedText = dg.Results.Channels[0].Alternatives[0].Transcript
	} else {
		log.Printf("Deepgram response did not contain a transcript for %s. Raw response: %s", audioObject, rawResponse)
	}

	log.Printf("DeepgramASRAdapter: Successfully recognized text for '%s': %s", audioObject, recognizedText)
	return recognizedText, rawResponse, nil
}
