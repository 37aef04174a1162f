package sessionmanagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crop-asr-qa-platform/backend/internal/coreengine/metricscalculator"
	"crop-asr-qa-platform/backend/internal/coreengine/sessionengine"
	"crop-asr-qa-platform/backend/internal/coreengine/vendoradapters"
	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
	"crop-asr-qa-platform/backend/internal/vocabulary"
)

// LiveSession pairs a workflow engine with the session row and the ASR
// provider resolved at creation time. The engine is the source of truth for
// workflow state; database writes are best-effort mirrors.
type LiveSession struct {
	Session        *datastore.TestSession
	Engine         *sessionengine.Engine
	ProviderConfig *datastore.ProviderConfig
	Adapter        vendoradapters.ASRAdapter
}

// SessionService owns the registry of live sessions. Lookups and inserts
// serialize on the registry mutex; per-session operations serialize inside
// the engine.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*LiveSession

	minioClient *objectstore.MinioClient
	vocab       vocabulary.Source
}

// DefaultService is the process-wide session service, set by InitSessionService.
var DefaultService *SessionService

// InitSessionService wires the session service with its collaborators.
// Call once at application startup, after the MinIO client is initialized.
func InitSessionService(minioClient *objectstore.MinioClient, vocab vocabulary.Source) {
	DefaultService = NewSessionService(minioClient, vocab)
}

// NewSessionService creates a session service backed by the given object
// store and vocabulary source.
func NewSessionService(minioClient *objectstore.MinioClient, vocab vocabulary.Source) *SessionService {
	return &SessionService{
		sessions:    make(map[string]*LiveSession),
		minioClient: minioClient,
		vocab:       vocab,
	}
}

// CreateSessionParams carries the validated inputs for session creation.
type CreateSessionParams struct {
	QAName           string
	Project          string
	Language         string
	StartSerial      int
	CropCount        int
	SelectionPolicy  string // empty means the default policy
	ProviderConfigID int
}

// CreateSession loads the vocabulary for the requested project and language,
// selects the crop range, resolves the ASR provider, and registers a live
// session. The session row is persisted best-effort: a datastore failure is
// logged but does not fail creation.
func (s *SessionService) CreateSession(params CreateSessionParams) (*LiveSession, error) {
	policy := vocabulary.DefaultPolicy
	if params.SelectionPolicy != "" {
		var err error
		policy, err = vocabulary.ParsePolicy(params.SelectionPolicy)
		if err != nil {
			return nil, err
		}
	}

	vocab, err := s.vocab.Load(params.Project, params.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary for project '%s' language '%s': %w", params.Project, params.Language, err)
	}

	selection, err := vocabulary.SelectWithPolicy(vocab, params.StartSerial, params.CropCount, policy)
	if err != nil {
		return nil, err
	}

	providerConfig, err := datastore.GetProviderConfig(params.ProviderConfigID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider config %d: %w", params.ProviderConfigID, err)
	}
	adapter, err := vendoradapters.GetASRAdapter(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ASR adapter: %w", err)
	}

	engine, err := sessionengine.New(sessionengine.Config{
		QAName:    params.QAName,
		Project:   params.Project,
		Language:  params.Language,
		Selection: selection,
	})
	if err != nil {
		return nil, err
	}

	session := &datastore.TestSession{
		ID:               uuid.New().String(),
		QAName:           params.QAName,
		Project:          params.Project,
		Language:         params.Language,
		StartSerial:      params.StartSerial,
		CropCount:        params.CropCount,
		SelectionPolicy:  string(policy),
		ProviderConfigID: sql.NullInt64{Int64: int64(params.ProviderConfigID), Valid: true},
		Status:           datastore.SessionStatusActive,
	}
	if err := datastore.CreateTestSession(session); err != nil {
		log.Printf("WARNING: failed to persist session %s: %v. Continuing in-memory.", session.ID, err)
	}

	live := &LiveSession{
		Session:        session,
		Engine:         engine,
		ProviderConfig: providerConfig,
		Adapter:        adapter,
	}

	s.mu.Lock()
	s.sessions[session.ID] = live
	s.mu.Unlock()

	log.Printf("Session %s created: qa=%s project=%s language=%s crops=%d provider=%s",
		session.ID, params.QAName, params.Project, params.Language, len(selection), providerConfig.Name)
	return live, nil
}

// Get returns the live session for an ID, or false if it is unknown.
func (s *SessionService) Get(id string) (*LiveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[id]
	return live, ok
}

// ProcessRecording runs one captured utterance through the full pipeline:
// stop the recording, upload the audio, call the ASR provider, and feed the
// outcome back to the engine under the attempt token issued at stop time. If
// the session is aborted while recognition is in flight, the stale token
// causes the late transcript to be dropped.
func (s *SessionService) ProcessRecording(ctx context.Context, live *LiveSession, filename string, audio io.Reader, size int64, contentType string) (sessionengine.UtteranceResult, error) {
	engine := live.Engine

	attempt, err := engine.StopRecording()
	if err != nil {
		return sessionengine.UtteranceResult{}, err
	}

	audioObject, err := s.minioClient.UploadRecording(ctx, live.Session.ID, filename, audio, size, contentType)
	if err != nil {
		// Nothing reached the recognizer; release the slot for a retry.
		_ = engine.OnTranscriptError(attempt)
		return sessionengine.UtteranceResult{}, fmt.Errorf("failed to store recording: %w", err)
	}

	startTime := time.Now()
	recognizedText, rawResponse, recErr := live.Adapter.Recognize(ctx, audioObject, live.Session.Language, live.ProviderConfig)
	latency := time.Since(startTime)

	if recErr != nil {
		log.Printf("Session %s: recognition failed for %s: %v", live.Session.ID, audioObject, recErr)
		if stateErr := engine.OnTranscriptError(attempt); stateErr != nil {
			// Session was aborted while recognition was in flight.
			return sessionengine.UtteranceResult{}, stateErr
		}
		return sessionengine.UtteranceResult{}, fmt.Errorf("%w: %v", vendoradapters.ErrRecognitionFailed, recErr)
	}

	result, err := engine.OnTranscript(attempt, recognizedText)
	if err != nil {
		log.Printf("Session %s: dropping late transcript for attempt %d", live.Session.ID, attempt)
		return sessionengine.UtteranceResult{}, err
	}

	s.persistResult(live, result, audioObject, rawResponse, latency)
	return result, nil
}

// persistResult mirrors a scored attempt into the datastore, with WER/CER
// diagnostics alongside the authoritative exact-match verdict. Failures are
// logged, never surfaced: the engine's in-memory sequence is authoritative.
func (s *SessionService) persistResult(live *LiveSession, result sessionengine.UtteranceResult, audioObject, rawResponse string, latency time.Duration) {
	row := &datastore.UtteranceResult{
		SessionID:       live.Session.ID,
		CropID:          result.CropID,
		CropSerial:      result.CropSerial,
		CropCode:        result.CropCode,
		CropName:        result.CropName,
		ExpectedText:    result.Expected,
		RecognizedText:  result.Actual,
		Correct:         result.Correct,
		RecordingNumber: result.RecordingNumber,
		LatencyMs:       sql.NullInt64{Int64: latency.Milliseconds(), Valid: true},
		AudioObject:     audioObject,
		QAName:          result.QAName,
		Project:         result.Project,
		Language:        result.Language,
		CreatedAt:       result.Timestamp,
	}

	if wer, err := metricscalculator.CalculateWER(result.Expected, result.Actual); err == nil {
		row.WER = sql.NullFloat64{Float64: wer, Valid: true}
	}
	if cer, err := metricscalculator.CalculateCER(result.Expected, result.Actual); err == nil {
		row.CER = sql.NullFloat64{Float64: cer, Valid: true}
	}
	if rawResponse != "" && json.Valid([]byte(rawResponse)) {
		row.RawVendorResponse = json.RawMessage(rawResponse)
	}

	if _, err := datastore.CreateUtteranceResult(row); err != nil {
		log.Printf("WARNING: failed to persist utterance result for session %s: %v", live.Session.ID, err)
	}
}

// Advance moves the session to the next crop. When the selection is
// exhausted the session row is marked completed.
func (s *SessionService) Advance(live *LiveSession) error {
	if err := live.Engine.Advance(); err != nil {
		return err
	}
	if live.Engine.State() == sessionengine.StateCompleted {
		s.markEnded(live, datastore.SessionStatusCompleted)
	}
	return nil
}

// Abort ends the session immediately, preserving accumulated results.
func (s *SessionService) Abort(live *LiveSession) {
	live.Engine.Abort()
	s.markEnded(live, datastore.SessionStatusAborted)
}

func (s *SessionService) markEnded(live *LiveSession, status string) {
	live.Session.Status = status
	if err := datastore.UpdateTestSessionStatus(live.Session.ID, status); err != nil {
		log.Printf("WARNING: failed to mark session %s as %s: %v", live.Session.ID, status, err)
	}
}

// Export snapshots the session and records the payload best-effort. The
// session stays usable after exporting.
func (s *SessionService) Export(live *LiveSession) (sessionengine.Export, error) {
	export := live.Engine.Export(time.Now())

	payload, err := json.Marshal(export)
	if err != nil {
		return sessionengine.Export{}, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	if _, err := datastore.CreateSessionExport(live.Session.ID, payload); err != nil {
		log.Printf("WARNING: failed to persist export for session %s: %v", live.Session.ID, err)
	}
	return export, nil
}

// ExportFilename derives the download filename from the tester's name and the
// export date: whitespace runs in the name collapse to single hyphens.
func ExportFilename(qaName string, now time.Time) string {
	name := strings.Join(strings.Fields(qaName), "-")
	return fmt.Sprintf("crop-asr-results-%s-%s.json", name, now.Format("2006-01-02"))
}
