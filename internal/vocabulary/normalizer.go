package vocabulary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CropEntry is one canonical vocabulary item. Serial defines the ordering
// within a (project, language) partition; Name is the expected transcript.
type CropEntry struct {
	Serial   int    `json:"serial"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Project  string `json:"project"`
}

// MalformedInputError reports a vocabulary parse failure. It enumerates both
// the logical columns that could not be resolved and the headers actually
// found, so a human can debug the uploaded file.
type MalformedInputError struct {
	MissingColumns []string
	FoundHeaders   []string
	Reason         string
}

func (e *MalformedInputError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("malformed vocabulary input: missing required columns [%s]; found headers [%s]",
			strings.Join(e.MissingColumns, ", "), strings.Join(e.FoundHeaders, ", "))
	}
	return "malformed vocabulary input: " + e.Reason
}

// requiredColumns are the logical columns every crop CSV must provide,
// each with its accepted literal header spellings (after normalization).
var requiredColumns = []string{"serialnumber", "cropcode", "cropname", "language", "project"}

var columnVariants = map[string][]string{
	"serialnumber": {"serial_number", "serialnumber", "serial"},
	"cropcode":     {"crop_code", "cropcode"},
	"cropname":     {"crop_name", "cropname"},
	"language":     {"language", "lang"},
	"project":      {"project", "proj"},
}

// normalizeHeaderCell lowercases a header cell and strips everything outside [a-z0-9_].
func normalizeHeaderCell(cell string) string {
	lowered := strings.ToLower(strings.TrimSpace(cell))
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseCropCSV parses comma-delimited vocabulary text (header row + data rows)
// into CropEntry values, in file order. It tolerates the accepted header
// spelling variants and fails with *MalformedInputError when a required
// logical column is absent.
//
// Lenient row handling, matching long-standing upload behavior:
//   - rows that are only whitespace are skipped;
//   - rows too short to reach every resolved column are skipped, not fatal;
//   - a serial that does not parse as an integer falls back to the 1-based
//     data-row position, preserving forward progress over strict validation.
//
// Entries are NOT sorted here; ordering is the range selector's job.
func ParseCropCSV(r io.Reader) ([]CropEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary input: %w", err)
	}

	if len(lines) < 2 {
		return nil, &MalformedInputError{Reason: "input must have at least a header row and one data row"}
	}

	header := strings.Split(lines[0], ",")
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = normalizeHeaderCell(cell)
	}

	// Resolve each logical column to its index in this file's header.
	columnIndex := map[string]int{}
	var missing []string
	for _, logical := range requiredColumns {
		found := -1
		for _, variant := range columnVariants[logical] {
			for i, cell := range normalized {
				if cell == variant {
					found = i
					break
				}
			}
			if found >= 0 {
				break
			}
		}
		if found < 0 {
			missing = append(missing, logical)
		} else {
			columnIndex[logical] = found
		}
	}
	if len(missing) > 0 {
		return nil, &MalformedInputError{MissingColumns: missing, FoundHeaders: normalized}
	}

	// A row is usable only if it reaches the highest resolved column index;
	// with extra header columns that can be further out than field 5.
	maxIndex := 0
	for _, idx := range columnIndex {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	entries := []CropEntry{}
	for i := 1; i < len(lines); i++ {
		values := strings.Split(lines[i], ",")
		for j := range values {
			values[j] = strings.TrimSpace(values[j])
		}
		if len(values) <= maxIndex {
			continue
		}

		serial, err := strconv.Atoi(values[columnIndex["serialnumber"]])
		if err != nil {
			serial = i // 1-based data-row position
		}

		entries = append(entries, CropEntry{
			Serial:   serial,
			Code:     values[columnIndex["cropcode"]],
			Name:     values[columnIndex["cropname"]],
			Language: strings.ToLower(values[columnIndex["language"]]),
			Project:  strings.ToLower(values[columnIndex["project"]]),
		})
	}

	return entries, nil
}
