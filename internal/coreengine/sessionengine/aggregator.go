package sessionengine

import "time"

// UtteranceResult is one scored recording attempt. Created exactly once per
// completed attempt and immutable thereafter; Expected is a frozen copy of
// the crop name at selection time, and session context is denormalized so
// the export payload stands alone.
type UtteranceResult struct {
	CropID          int       `json:"cropId"` // 1-based position within the session selection
	CropSerial      int       `json:"cropSerial"`
	CropCode        string    `json:"cropCode,omitempty"`
	CropName        string    `json:"cropName"`
	Expected        string    `json:"expected"`
	Actual          string    `json:"actual"` // may be empty
	Correct         bool      `json:"correct"`
	RecordingNumber int       `json:"recordingNumber"` // 1-based within the crop's repetition set
	Timestamp       time.Time `json:"timestamp"`
	QAName          string    `json:"qaName"`
	Project         string    `json:"project"`
	Language        string    `json:"language"`
}

// Summary is recomputed on demand from the accumulated result sequence.
type Summary struct {
	TotalCrops      int `json:"totalCrops"`
	CompletedItems  int `json:"completedCrops"`
	TotalRecordings int `json:"totalRecordings"`
	Accuracy        int `json:"accuracy"` // rounded percentage, 0 when no recordings
}

// Export is the immutable snapshot handed to the export surface. Results is
// a copy; mutating it after export does not affect the live session.
type Export struct {
	QAName          string            `json:"qaName"`
	Project         string            `json:"project"`
	Language        string            `json:"language"`
	ExportTimestamp time.Time         `json:"exportTimestamp"`
	TotalCrops      int               `json:"totalCrops"`
	CompletedItems  int               `json:"completedCrops"`
	TotalRecordings int               `json:"totalRecordings"`
	Accuracy        int               `json:"accuracy"`
	Results         []UtteranceResult `json:"results"`
}

// aggregator owns the session's append-only result sequence.
type aggregator struct {
	results []UtteranceResult
}

func (a *aggregator) record(r UtteranceResult) {
	a.results = append(a.results, r)
}

func (a *aggregator) resultsCopy() []UtteranceResult {
	out := make([]UtteranceResult, len(a.results))
	copy(out, a.results)
	return out
}

// summarize recomputes counts as a pure function of the result sequence.
func (a *aggregator) summarize(totalCrops, repetitionsRequired int) Summary {
	total := len(a.results)
	s := Summary{
		TotalCrops:      totalCrops,
		TotalRecordings: total,
	}
	if total == 0 {
		return s
	}

	// ceil(total / repetitionsRequired)
	s.CompletedItems = (total + repetitionsRequired - 1) / repetitionsRequired

	correct := 0
	for _, r := range a.results {
		if r.Correct {
			correct++
		}
	}
	s.Accuracy = int(float64(correct)/float64(total)*100 + 0.5)
	return s
}
