package datastore

import (
	"time"
)

// Crop maps to the crops table: one vocabulary item a tester is asked to utter.
// Serial defines the canonical ordering within one (project, language) partition.
type Crop struct {
	ID        int       `json:"id"`
	Project   string    `json:"project"`
	Language  string    `json:"language"`
	Serial    int       `json:"serial"`
	CropCode  string    `json:"crop_code"` // opaque external identifier, may be empty
	CropName  string    `json:"crop_name"`
	CreatedAt time.Time `json:"created_at"`
}
