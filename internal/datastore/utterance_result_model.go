package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// UtteranceResult maps to the utterance_results table: one scored recording
// attempt. Session context (qa_name, project, language) is denormalized onto
// the row so exports stand alone.
type UtteranceResult struct {
	ID                int             `json:"id"`
	SessionID         string          `json:"session_id"`
	CropID            int             `json:"crop_id"` // 1-based position within the session's selection
	CropSerial        int             `json:"crop_serial"`
	CropCode          string          `json:"crop_code"`
	CropName          string          `json:"crop_name"`
	ExpectedText      string          `json:"expected"`
	RecognizedText    string          `json:"actual"` // may be empty
	Correct           bool            `json:"correct"`
	RecordingNumber   int             `json:"recording_number"` // 1-based within the crop's repetition set
	WER               sql.NullFloat64 `json:"wer,omitempty"`
	CER               sql.NullFloat64 `json:"cer,omitempty"`
	LatencyMs         sql.NullInt64   `json:"latency_ms,omitempty"`
	AudioObject       string          `json:"audio_object,omitempty"` // object key in audio storage
	RawVendorResponse json.RawMessage `json:"raw_vendor_response,omitempty"`
	QAName            string          `json:"qa_name"`
	Project           string          `json:"project"`
	Language          string          `json:"language"`
	CreatedAt         time.Time       `json:"timestamp"`
}
