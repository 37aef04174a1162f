package datastore

import (
	"database/sql"
	"time"
)

// TestSession maps to the test_sessions table: one continuous run of testing
// a selected range of crops by one tester.
type TestSession struct {
	ID               string         `json:"id"` // UUID assigned by the session manager
	QAName           string         `json:"qa_name"`
	Project          string         `json:"project"`
	Language         string         `json:"language"`
	StartSerial      int            `json:"start_serial"`
	CropCount        int            `json:"crop_count"`
	SelectionPolicy  string         `json:"selection_policy"`
	ProviderConfigID sql.NullInt64  `json:"provider_config_id,omitempty"`
	Status           string         `json:"status"` // ACTIVE, COMPLETED, ABORTED
	CreatedAt        time.Time      `json:"created_at"`
	CompletedAt      sql.NullTime   `json:"completed_at,omitempty"`
}

const (
	SessionStatusActive    = "ACTIVE"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusAborted   = "ABORTED"
)
