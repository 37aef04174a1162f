package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreateProviderConfig inserts a new provider config into the database and returns its ID.
func CreateProviderConfig(pc *ProviderConfig) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO provider_configs (name, api_type, api_key, api_secret, api_endpoint, other_configs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	pc.CreatedAt = time.Now()
	pc.UpdatedAt = time.Now()

	var otherConfigs []byte
	if pc.OtherConfigs != nil {
		otherConfigs = pc.OtherConfigs
	} else {
		otherConfigs = json.RawMessage("null")
	}

	var id int
	err := DB.QueryRow(
		query,
		pc.Name,
		pc.APIType,
		pc.APIKey,
		pc.APISecret,
		pc.APIEndpoint,
		otherConfigs,
		pc.CreatedAt,
		pc.UpdatedAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create provider config: %w", err)
	}
	return id, nil
}

// GetProviderConfig retrieves a provider config by ID.
func GetProviderConfig(id int) (*ProviderConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, name, api_type, api_key, api_secret, api_endpoint, other_configs, created_at, updated_at
		FROM provider_configs
		WHERE id = $1
	`
	pc := &ProviderConfig{}
	var otherConfigs []byte

	err := DB.QueryRow(query, id).Scan(
		&pc.ID,
		&pc.Name,
		&pc.APIType,
		&pc.APIKey,
		&pc.APISecret,
		&pc.APIEndpoint,
		&otherConfigs,
		&pc.CreatedAt,
		&pc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("provider config with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}
	if otherConfigs != nil && string(otherConfigs) != "null" {
		pc.OtherConfigs = json.RawMessage(otherConfigs)
	}

	return pc, nil
}

// ListProviderConfigs lists all provider configs, newest first.
func ListProviderConfigs() ([]*ProviderConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, name, api_type, api_key, api_secret, api_endpoint, other_configs, created_at, updated_at
		FROM provider_configs
		ORDER BY created_at DESC
	`
	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider configs: %w", err)
	}
	defer rows.Close()

	configs := []*ProviderConfig{}
	for rows.Next() {
		pc := &ProviderConfig{}
		var otherConfigs []byte
		if err := rows.Scan(
			&pc.ID,
			&pc.Name,
			&pc.APIType,
			&pc.APIKey,
			&pc.APISecret,
			&pc.APIEndpoint,
			&otherConfigs,
			&pc.CreatedAt,
			&pc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan provider config row: %w", err)
		}
		if otherConfigs != nil && string(otherConfigs) != "null" {
			pc.OtherConfigs = json.RawMessage(otherConfigs)
		}
		configs = append(configs, pc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for provider configs: %w", err)
	}

	return configs, nil
}

// UpdateProviderConfig overwrites the mutable fields of an existing provider config.
func UpdateProviderConfig(id int, pc *ProviderConfig) (*ProviderConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	var otherConfigs []byte
	if pc.OtherConfigs != nil {
		otherConfigs = pc.OtherConfigs
	} else {
		otherConfigs = json.RawMessage("null")
	}

	query := `
		UPDATE provider_configs
		SET name = $1, api_type = $2, api_key = $3, api_secret = $4, api_endpoint = $5, other_configs = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := DB.Exec(query, pc.Name, pc.APIType, pc.APIKey, pc.APISecret, pc.APIEndpoint, otherConfigs, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider config with ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for provider config ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("provider config with ID %d not found for update", id)
	}

	return GetProviderConfig(id)
}

// DeleteProviderConfig deletes a provider config by ID.
func DeleteProviderConfig(id int) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}
	query := "DELETE FROM provider_configs WHERE id = $1"
	result, err := DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete provider config with ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for provider config ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("provider config with ID %d not found for deletion", id)
	}

	return nil
}
