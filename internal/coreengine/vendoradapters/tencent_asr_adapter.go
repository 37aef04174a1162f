package vendoradapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	asr "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/asr/v20190614"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

// TencentASRAdapter implements the ASRAdapter interface for Tencent Cloud Speech Recognition.
type TencentASRAdapter struct {
	MinioClient *objectstore.MinioClient
}

// NewTencentASRAdapter creates a new instance of TencentASRAdapter.
func NewTencentASRAdapter(minioClient *objectstore.MinioClient) *TencentASRAdapter {
	if minioClient == nil {
		log.Println("Warning: NewTencentASRAdapter created with a nil MinioClient. File fetching will fail.")
	}
	return &TencentASRAdapter{MinioClient: minioClient}
}

// engineModelForLanguage derives Tencent's engine service type from a
// language hint. EngSerViceType bundles language and sample rate.
func engineModelForLanguage(language string) string {
	switch {
	case strings.HasPrefix(language, "en"):
		return "16k_en"
	case strings.HasPrefix(language, "zh"):
		return "16k_zh"
	default:
		return "16k_zh"
	}
}

// Recognize transcribes audio using Tencent Cloud's SentenceRecognition API.
func (a *TencentASRAdapter) Recognize(ctx context.Context, audioObject string, language string, providerConfig *datastore.ProviderConfig) (recognizedText string, rawResponse string, err error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("TencentASRAdapter: MinioClient is not initialized")
	}

	// 1. Authentication: SecretId/SecretKey carried as APIKey/APISecret.
	if !providerConfig.APIKey.Valid || providerConfig.APIKey.String == "" {
		return "", "", fmt.Errorf("Tencent Cloud SecretId (api_key) is missing in provider configuration")
	}
	if !providerConfig.APISecret.Valid || providerConfig.APISecret.String == "" {
		return "", "", fmt.Errorf("Tencent Cloud SecretKey (api_secret) is missing in provider configuration")
	}

	region := providerConfig.OtherConfigValue("tencent_region")
	if region == "" {
		region = "ap-guangzhou"
	}

	credential := common.NewCredential(providerConfig.APIKey.String, providerConfig.APISecret.String)
	clientProfile := profile.NewClientProfile()
	clientProfile.HttpProfile.ReqTimeout = 60

	client, err := asr.NewClient(credential, region, clientProfile)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Tencent ASR client: %w", err)
	}

	// 2. Audio fetching and encoding
	audioBytes, err := a.MinioClient.GetFileBytes(ctx, audioObject)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch audio file '%s' from MinIO: %w", audioObject, err)
	}
	base64Audio := base64.StdEncoding.EncodeToString(audioBytes)

	// 3. SentenceRecognition request
	engineModel := providerConfig.OtherConfigValue("engine_model_type")
	if engineModel == "" {
		engineModel = engineModelForLanguage(language)
	}

	voiceFormat := strings.TrimPrefix(filepath.Ext(audioObject), ".")
	if voiceFormat == "" {
		voiceFormat = "wav"
	}

	request := asr.NewSentenceRecognitionRequest()
	request.SubServiceType = common.Uint64Ptr(2)
	request.EngSerViceType = common.StringPtr(engineModel)
	request.SourceType = common.Uint64Ptr(1) // audio data passed inline
	request.Data = common.StringPtr(base64Audio)
	request.DataLen = common.Int64Ptr(int64(len(audioBytes)))
	request.VoiceFormat = common.StringPtr(voiceFormat)

	// 4. API call
	log.Printf("Sending SentenceRecognition request to Tencent ASR API for %s (engine=%s, format=%s)",
		audioObject, engineModel, voiceFormat)
	startTime := time.Now()
	response, err := client.SentenceRecognitionWithContext(ctx, request)
	latency := time.Since(startTime)
	log.Printf("Tencent ASR API call for %s completed in %v", audioObject, latency)

	// 5. Response handling
	rawResponseBytes, _ := json.Marshal(response)
	rawResponse = string(rawResponseBytes)

	if err != nil {
		if terr, ok := err.(*tcerrors.TencentCloudSDKError); ok {
			log.Printf("Tencent ASR API Error: Code=%s, Message=%s, RequestId=%s", terr.GetCode(), terr.GetMessage(), terr.GetRequestId())
			return "", rawResponse, fmt.Errorf("Tencent ASR API error: %s (Code: %s)", terr.GetMessage(), terr.GetCode())
		}
		return "", rawResponse, fmt.Errorf("Tencent ASR API request failed: %w", err)
	}

	if response.Response == nil || response.Response.Result == nil {
		return "", rawResponse, fmt.Errorf("Tencent ASR API returned nil response or result")
	}

	recognizedText = *response.Response.Result
	log.Printf("TencentASRAdapter: Successfully recognized text for '%s': %s", audioObject, recognizedText)
	return recognizedText, rawResponse, nil
}
