package vendoradapters

import (
	"fmt"
	"log"

	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
)

// Adapters needing the audio store share one client, set at startup.
var globalObjectStoreClient *objectstore.MinioClient

// InitAdapterRegistry wires the shared object store client into the adapter
// layer. Must be called at application startup before any Recognize call.
func InitAdapterRegistry(minioClient *objectstore.MinioClient) {
	if minioClient == nil {
		log.Println("Warning: InitAdapterRegistry called with a nil MinioClient. Adapters needing audio storage will fail.")
	}
	globalObjectStoreClient = minioClient
}

// GetASRAdapter selects an ASRAdapter based on the provider configuration.
// Unknown provider names are an error; the mock adapter is only ever chosen
// when explicitly configured, never as a silent fallback.
func GetASRAdapter(providerConfig *datastore.ProviderConfig) (ASRAdapter, error) {
	if providerConfig == nil {
		return nil, fmt.Errorf("providerConfig cannot be nil")
	}

	switch providerConfig.Name {
	case "MockASR":
		return &MockASRAdapter{}, nil
	case "SarvamASR":
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("SarvamASRAdapter requires an initialized object store client, but it's nil")
		}
		return NewSarvamASRAdapter(globalObjectStoreClient), nil
	case "GoogleCloudASR":
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("GoogleASRAdapter requires an initialized object store client, but it's nil")
		}
		return NewGoogleASRAdapter(globalObjectStoreClient), nil
	case "MicrosoftASR":
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("MicrosoftASRAdapter requires an initialized object store client, but it's nil")
		}
		return NewMicrosoftASRAdapter(globalObjectStoreClient), nil
	case "DeepgramASR":
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("DeepgramASRAdapter requires an initialized object store client, but it's nil")
		}
		return NewDeepgramASRAdapter(globalObjectStoreClient), nil
	case "TencentASR":
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("TencentASRAdapter requires an initialized object store client, but it's nil")
		}
		return NewTencentASRAdapter(globalObjectStoreClient), nil
	default:
		return nil, fmt.Errorf("no ASR adapter available for provider: %s (API type: %s)", providerConfig.Name, providerConfig.APIType)
	}
}
