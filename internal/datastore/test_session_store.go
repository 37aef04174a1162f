package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateTestSession inserts a new test session row.
func CreateTestSession(ts *TestSession) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO test_sessions (id, qa_name, project, language, start_serial, crop_count, selection_policy, provider_config_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	ts.CreatedAt = time.Now()
	if ts.Status == "" {
		ts.Status = SessionStatusActive
	}

	_, err := DB.Exec(
		query,
		ts.ID,
		ts.QAName,
		ts.Project,
		ts.Language,
		ts.StartSerial,
		ts.CropCount,
		ts.SelectionPolicy,
		ts.ProviderConfigID,
		ts.Status,
		ts.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test session %s: %w", ts.ID, err)
	}
	return nil
}

// GetTestSession retrieves a test session by its UUID.
func GetTestSession(id string) (*TestSession, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, qa_name, project, language, start_serial, crop_count, selection_policy, provider_config_id, status, created_at, completed_at
		FROM test_sessions
		WHERE id = $1
	`
	ts := &TestSession{}
	err := DB.QueryRow(query, id).Scan(
		&ts.ID,
		&ts.QAName,
		&ts.Project,
		&ts.Language,
		&ts.StartSerial,
		&ts.CropCount,
		&ts.SelectionPolicy,
		&ts.ProviderConfigID,
		&ts.Status,
		&ts.CreatedAt,
		&ts.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("test session %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}
	return ts, nil
}

// UpdateTestSessionStatus marks a session COMPLETED or ABORTED and stamps completed_at.
func UpdateTestSessionStatus(id string, status string) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `UPDATE test_sessions SET status = $1, completed_at = $2 WHERE id = $3`
	result, err := DB.Exec(query, status, sql.NullTime{Time: time.Now(), Valid: true}, id)
	if err != nil {
		return fmt.Errorf("failed to update status for session %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected when updating status for session %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session %s not found for status update", id)
	}
	return nil
}

// ListTestSessions lists sessions, optionally filtered by QA name, newest first.
func ListTestSessions(qaName string) ([]*TestSession, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	var rows *sql.Rows
	var err error
	baseQuery := `
		SELECT id, qa_name, project, language, start_serial, crop_count, selection_policy, provider_config_id, status, created_at, completed_at
		FROM test_sessions
	`
	if qaName != "" {
		rows, err = DB.Query(baseQuery+" WHERE qa_name = $1 ORDER BY created_at DESC", qaName)
	} else {
		rows, err = DB.Query(baseQuery + " ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list test sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*TestSession{}
	for rows.Next() {
		ts := &TestSession{}
		if err := rows.Scan(
			&ts.ID,
			&ts.QAName,
			&ts.Project,
			&ts.Language,
			&ts.StartSerial,
			&ts.CropCount,
			&ts.SelectionPolicy,
			&ts.ProviderConfigID,
			&ts.Status,
			&ts.CreatedAt,
			&ts.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan test session row: %w", err)
		}
		sessions = append(sessions, ts)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for test sessions: %w", err)
	}

	return sessions, nil
}
