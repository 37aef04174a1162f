package datastore

import (
	"errors"
	"fmt"
	"time"
)

// ListCrops retrieves the crop catalog ordered ascending by serial number.
// Empty project or language filters match everything.
func ListCrops(project string, language string) ([]*Crop, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, project, language, serial, crop_code, crop_name, created_at
		FROM crops
		WHERE ($1 = '' OR project = $1) AND ($2 = '' OR language = $2)
		ORDER BY project ASC, language ASC, serial ASC
	`
	rows, err := DB.Query(query, project, language)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops for %s/%s: %w", project, language, err)
	}
	defer rows.Close()

	crops := []*Crop{}
	for rows.Next() {
		c := &Crop{}
		if err := rows.Scan(
			&c.ID,
			&c.Project,
			&c.Language,
			&c.Serial,
			&c.CropCode,
			&c.CropName,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crop row: %w", err)
		}
		crops = append(crops, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for crops: %w", err)
	}

	return crops, nil
}

// ReplaceCrops upserts a batch of crops inside one transaction. Existing rows
// with the same (project, language, serial) are overwritten so that a fresh
// CSV upload supersedes the previous catalog for that partition.
func ReplaceCrops(crops []*Crop) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}
	if len(crops) == 0 {
		return 0, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin crop upsert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO crops (project, language, serial, crop_code, crop_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project, language, serial)
		DO UPDATE SET crop_code = EXCLUDED.crop_code, crop_name = EXCLUDED.crop_name
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare crop upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for _, c := range crops {
		if _, err := stmt.Exec(c.Project, c.Language, c.Serial, c.CropCode, c.CropName, now); err != nil {
			return 0, fmt.Errorf("failed to upsert crop serial %d (%s/%s): %w", c.Serial, c.Project, c.Language, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crop upsert transaction: %w", err)
	}
	return inserted, nil
}

// CountCropsByLanguage returns per-language crop counts, used by the upload
// handler to report what a CSV contributed. An empty project matches everything.
func CountCropsByLanguage(project string) (map[string]int, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `SELECT language, COUNT(*) FROM crops WHERE ($1 = '' OR project = $1) GROUP BY language`
	rows, err := DB.Query(query, project)
	if err != nil {
		return nil, fmt.Errorf("failed to count crops for project %s: %w", project, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var language string
		var n int
		if err := rows.Scan(&language, &n); err != nil {
			return nil, fmt.Errorf("failed to scan crop count row: %w", err)
		}
		counts[language] = n
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for crop counts: %w", err)
	}

	return counts, nil
}
