package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreateUtteranceResult inserts one scored recording attempt and returns its ID.
func CreateUtteranceResult(r *UtteranceResult) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO utterance_results
			(session_id, crop_id, crop_serial, crop_code, crop_name, expected_text, recognized_text, correct,
			 recording_number, wer, cer, latency_ms, audio_object, raw_vendor_response, qa_name, project, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	var rawResponse []byte
	if r.RawVendorResponse != nil && len(r.RawVendorResponse) > 0 {
		rawResponse = r.RawVendorResponse
	} else {
		rawResponse = json.RawMessage("null")
	}

	var id int
	err := DB.QueryRow(
		query,
		r.SessionID,
		r.CropID,
		r.CropSerial,
		r.CropCode,
		r.CropName,
		r.ExpectedText,
		r.RecognizedText,
		r.Correct,
		r.RecordingNumber,
		r.WER,
		r.CER,
		r.LatencyMs,
		r.AudioObject,
		rawResponse,
		r.QAName,
		r.Project,
		r.Language,
		r.CreatedAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create utterance result: %w", err)
	}
	r.ID = id
	return id, nil
}

// ListUtteranceResultsBySession lists all results for a session in recording order.
func ListUtteranceResultsBySession(sessionID string) ([]*UtteranceResult, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, session_id, crop_id, crop_serial, crop_code, crop_name, expected_text, recognized_text, correct,
		       recording_number, wer, cer, latency_ms, audio_object, raw_vendor_response, qa_name, project, language, created_at
		FROM utterance_results
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := DB.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list utterance results for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	results := []*UtteranceResult{}
	for rows.Next() {
		r := &UtteranceResult{}
		var rawResponse []byte
		if err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.CropID,
			&r.CropSerial,
			&r.CropCode,
			&r.CropName,
			&r.ExpectedText,
			&r.RecognizedText,
			&r.Correct,
			&r.RecordingNumber,
			&r.WER,
			&r.CER,
			&r.LatencyMs,
			&r.AudioObject,
			&rawResponse,
			&r.QAName,
			&r.Project,
			&r.Language,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan utterance result row: %w", err)
		}
		if rawResponse != nil && string(rawResponse) != "null" {
			r.RawVendorResponse = json.RawMessage(rawResponse)
		}
		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for utterance results: %w", err)
	}

	return results, nil
}

// CreateSessionExport persists a finalized export payload for audit purposes.
// Best-effort from the engine's perspective; failures are logged by callers.
func CreateSessionExport(sessionID string, payload json.RawMessage) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO session_exports (session_id, payload, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int
	err := DB.QueryRow(query, sessionID, payload, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create session export for %s: %w", sessionID, err)
	}
	return id, nil
}
