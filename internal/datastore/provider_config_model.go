package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ProviderConfig maps to the provider_configs table in the database.
// It holds credentials and endpoint details for one ASR provider.
type ProviderConfig struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`     // e.g. "SarvamASR", "GoogleCloudASR"
	APIType      string          `json:"api_type"` // "ASR" for all rows today
	APIKey       sql.NullString  `json:"api_key,omitempty"`
	APISecret    sql.NullString  `json:"api_secret,omitempty"` // Consider encrypting if storing real secrets
	APIEndpoint  sql.NullString  `json:"api_endpoint,omitempty"`
	OtherConfigs json.RawMessage `json:"other_configs,omitempty"` // Provider-specific JSON (regions, model names, ...)
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OtherConfigValue returns a string value from the OtherConfigs JSON object,
// or "" when the key is absent or OtherConfigs is not an object.
func (pc *ProviderConfig) OtherConfigValue(key string) string {
	if pc.OtherConfigs == nil {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal(pc.OtherConfigs, &m); err != nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
