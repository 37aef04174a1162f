package vocabulary

import (
	"fmt"

	"crop-asr-qa-platform/backend/internal/datastore"
)

// Source yields the canonical vocabulary for one (project, language)
// partition. The two historical code paths (remote catalog vs. uploaded CSV)
// sit behind this single interface.
type Source interface {
	Load(project, language string) ([]CropEntry, error)
}

// StoreSource loads the vocabulary from the crops catalog in the database.
type StoreSource struct{}

// Load fetches the partition's crops. Entries come back already sorted by
// serial (the store orders them), ready for range selection.
func (StoreSource) Load(project, language string) ([]CropEntry, error) {
	crops, err := datastore.ListCrops(project, language)
	if err != nil {
		return nil, fmt.Errorf("failed to load crops from catalog: %w", err)
	}

	entries := make([]CropEntry, 0, len(crops))
	for _, c := range crops {
		entries = append(entries, CropEntry{
			Serial:   c.Serial,
			Code:     c.CropCode,
			Name:     c.CropName,
			Language: c.Language,
			Project:  c.Project,
		})
	}
	return entries, nil
}

// MemorySource serves an already-normalized entry slice, filtered per
// partition. Used for CSV uploads tested without persisting, and as a
// test double. The held slice is read-only after construction.
type MemorySource struct {
	Entries []CropEntry
}

func (m *MemorySource) Load(project, language string) ([]CropEntry, error) {
	var entries []CropEntry
	for _, e := range m.Entries {
		if e.Project == project && e.Language == language {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
