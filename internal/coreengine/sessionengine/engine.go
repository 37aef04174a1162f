package sessionengine

import (
	"fmt"
	"sync"
	"time"

	"crop-asr-qa-platform/backend/internal/vocabulary"
)

// State is the recording workflow state for one session.
type State string

const (
	// StateIdle: ready to accept beginRecording for the current repetition slot.
	StateIdle State = "IDLE"
	// StateRecording: a recording is being captured by the client.
	StateRecording State = "RECORDING"
	// StateProcessing: captured audio has been handed to the transcription
	// collaborator; no new recording may start until it resolves.
	StateProcessing State = "PROCESSING_UTTERANCE"
	// StateAwaitingAdvance: all repetitions for the current crop are scored;
	// waiting for the operator to move to the next crop.
	StateAwaitingAdvance State = "AWAITING_ADVANCE"
	// StateCompleted is terminal: all crops exhausted or explicit abort.
	StateCompleted State = "COMPLETED"
)

// DefaultRepetitionsRequired is the number of utterances recorded per crop
// before the workflow advances. Overridable per session via Config.
const DefaultRepetitionsRequired = 5

// Config parameterizes one session engine.
type Config struct {
	QAName    string
	Project   string
	Language  string
	Selection []vocabulary.SelectedCrop
	// RepetitionsRequired defaults to DefaultRepetitionsRequired when <= 0.
	RepetitionsRequired int
}

// Engine drives the fixed-repetition recording workflow for one session.
// All methods serialize on an internal mutex: a single engine instance is
// safe for concurrent use, but only one operation mutates it at a time
// (single-writer-per-session discipline). Sessions never share engines.
type Engine struct {
	mu sync.Mutex

	qaName   string
	project  string
	language string

	selection           []vocabulary.SelectedCrop
	repetitionsRequired int

	state           State
	itemIndex       int // 0-based into selection
	repetitionCount int // completed scored transcripts for the current crop

	attemptSeq     uint64
	pendingAttempt uint64 // nonzero only while StateProcessing

	agg aggregator
}

// New creates a session engine over a non-empty selection.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Selection) == 0 {
		return nil, fmt.Errorf("session selection must not be empty")
	}
	if cfg.QAName == "" {
		return nil, fmt.Errorf("qa name must not be empty")
	}

	reps := cfg.RepetitionsRequired
	if reps <= 0 {
		reps = DefaultRepetitionsRequired
	}

	selection := make([]vocabulary.SelectedCrop, len(cfg.Selection))
	copy(selection, cfg.Selection)

	return &Engine{
		qaName:              cfg.QAName,
		project:             cfg.Project,
		language:            cfg.Language,
		selection:           selection,
		repetitionsRequired: reps,
		state:               StateIdle,
	}, nil
}

// State returns the current workflow state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RepetitionsRequired returns the per-crop repetition count for this session.
func (e *Engine) RepetitionsRequired() int {
	return e.repetitionsRequired
}

// SelectionSize returns the number of crops selected for this session.
func (e *Engine) SelectionSize() int {
	return len(e.selection)
}

// Progress reports the 0-based crop index and the number of scored
// repetitions for the current crop.
func (e *Engine) Progress() (itemIndex, repetitionCount int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemIndex, e.repetitionCount
}

// CurrentCrop returns the crop under test, or false once the session completed.
func (e *Engine) CurrentCrop() (vocabulary.SelectedCrop, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateCompleted || e.itemIndex >= len(e.selection) {
		return vocabulary.SelectedCrop{}, false
	}
	return e.selection[e.itemIndex], true
}

// BeginRecording transitions Idle -> Recording.
func (e *Engine) BeginRecording() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle || e.itemIndex >= len(e.selection) {
		return fmt.Errorf("%w: cannot begin recording in state %s", ErrNotReady, e.state)
	}
	e.state = StateRecording
	return nil
}

// StopRecording transitions Recording -> ProcessingUtterance and returns an
// attempt token. The caller hands the captured audio to the transcription
// collaborator and must report the outcome via OnTranscript or
// OnTranscriptError with that token; a token invalidated by abort causes the
// late outcome to be dropped.
func (e *Engine) StopRecording() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRecording {
		return 0, fmt.Errorf("%w: cannot stop recording in state %s", ErrNotReady, e.state)
	}
	e.attemptSeq++
	e.pendingAttempt = e.attemptSeq
	e.state = StateProcessing
	return e.pendingAttempt, nil
}

// OnTranscript scores the recognized text for a pending attempt, appends the
// result, and advances the repetition slot. After repetitionsRequired scored
// transcripts the workflow moves to AwaitingAdvance; before that it returns
// to Idle, ready for the next beginRecording on the same crop.
func (e *Engine) OnTranscript(attempt uint64, text string) (UtteranceResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateProcessing || attempt == 0 || attempt != e.pendingAttempt {
		return UtteranceResult{}, ErrStaleTranscript
	}

	crop := e.selection[e.itemIndex]
	result := UtteranceResult{
		CropID:          crop.Position,
		CropSerial:      crop.Serial,
		CropCode:        crop.Code,
		CropName:        crop.Name,
		Expected:        crop.Name,
		Actual:          text,
		Correct:         Score(crop.Name, text),
		RecordingNumber: e.repetitionCount + 1,
		Timestamp:       time.Now(),
		QAName:          e.qaName,
		Project:         e.project,
		Language:        e.language,
	}
	e.agg.record(result)

	e.pendingAttempt = 0
	e.repetitionCount++
	if e.repetitionCount < e.repetitionsRequired {
		e.state = StateIdle
	} else {
		e.state = StateAwaitingAdvance
	}
	return result, nil
}

// OnTranscriptError returns the workflow to Idle for the same repetition
// slot after a failed recognition call. Counters are untouched and no result
// is appended; the slot is simply retried.
func (e *Engine) OnTranscriptError(attempt uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateProcessing || attempt == 0 || attempt != e.pendingAttempt {
		return ErrStaleTranscript
	}
	e.pendingAttempt = 0
	e.state = StateIdle
	return nil
}

// Advance moves AwaitingAdvance -> Idle on the next crop, or to the terminal
// Completed state when the selection is exhausted.
func (e *Engine) Advance() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingAdvance {
		return fmt.Errorf("%w: cannot advance in state %s", ErrNotReady, e.state)
	}
	e.itemIndex++
	e.repetitionCount = 0
	if e.itemIndex < len(e.selection) {
		e.state = StateIdle
	} else {
		e.state = StateCompleted
	}
	return nil
}

// Abort moves the session to the terminal Completed state from any state,
// preserving all results accumulated so far. A transcription still in flight
// is invalidated; its eventual outcome is dropped by the attempt-token check.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pendingAttempt = 0
	e.state = StateCompleted
}

// Summary recomputes the running counts from the result sequence.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agg.summarize(len(e.selection), e.repetitionsRequired)
}

// Results returns a copy of the accumulated result sequence.
func (e *Engine) Results() []UtteranceResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agg.resultsCopy()
}

// Export produces the immutable export snapshot. Exporting does not clear or
// reset the session; only Advance past the last crop or Abort end it.
func (e *Engine) Export(now time.Time) Export {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.agg.summarize(len(e.selection), e.repetitionsRequired)
	return Export{
		QAName:          e.qaName,
		Project:         e.project,
		Language:        e.language,
		ExportTimestamp: now,
		TotalCrops:      s.TotalCrops,
		CompletedItems:  s.CompletedItems,
		TotalRecordings: s.TotalRecordings,
		Accuracy:        s.Accuracy,
		Results:         e.agg.resultsCopy(),
	}
}
