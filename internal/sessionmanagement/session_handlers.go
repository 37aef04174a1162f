package sessionmanagement

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"crop-asr-qa-platform/backend/internal/coreengine/sessionengine"
	"crop-asr-qa-platform/backend/internal/coreengine/vendoradapters"
	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/vocabulary"
)

const maxRecordingSize = 50 << 20 // 50 MB

// CreateSessionRequest defines the expected payload for starting a test session.
type CreateSessionRequest struct {
	QAName           string `json:"qa_name" binding:"required"`
	Project          string `json:"project" binding:"required"`
	Language         string `json:"language" binding:"required"`
	StartSerial      int    `json:"start_serial" binding:"required"`
	CropCount        int    `json:"crop_count" binding:"required"`
	SelectionPolicy  string `json:"selection_policy"` // optional, defaults to "filter"
	ProviderConfigID int    `json:"provider_config_id" binding:"required"`
}

// sessionView is the state payload returned by most session endpoints.
func sessionView(live *LiveSession) gin.H {
	engine := live.Engine
	itemIndex, repetitionCount := engine.Progress()
	view := gin.H{
		"id":                   live.Session.ID,
		"qa_name":              live.Session.QAName,
		"project":              live.Session.Project,
		"language":             live.Session.Language,
		"status":               live.Session.Status,
		"state":                engine.State(),
		"total_crops":          engine.SelectionSize(),
		"crop_index":           itemIndex,
		"repetition_count":     repetitionCount,
		"repetitions_required": engine.RepetitionsRequired(),
	}
	if crop, ok := engine.CurrentCrop(); ok {
		view["current_crop"] = gin.H{
			"position": crop.Position,
			"serial":   crop.Serial,
			"code":     crop.Code,
			"name":     crop.Name,
		}
	}
	return view
}

// CreateSessionHandler starts a new test session over a selected crop range.
func CreateSessionHandler(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	live, err := DefaultService.CreateSession(CreateSessionParams{
		QAName:           req.QAName,
		Project:          req.Project,
		Language:         req.Language,
		StartSerial:      req.StartSerial,
		CropCount:        req.CropCount,
		SelectionPolicy:  req.SelectionPolicy,
		ProviderConfigID: req.ProviderConfigID,
	})
	if err != nil {
		var rangeErr *vocabulary.InvalidRangeError
		if errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop range: " + rangeErr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sessionView(live))
}

// GetSessionHandler returns the current workflow state of a session.
func GetSessionHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sessionView(live))
}

// ListSessionsHandler lists persisted sessions, optionally filtered by tester name.
func ListSessionsHandler(c *gin.Context) {
	qaName := c.Query("qa_name")

	sessions, err := datastore.ListTestSessions(qaName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions: " + err.Error()})
		return
	}

	if sessions == nil {
		sessions = []*datastore.TestSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// StartRecordingHandler begins capturing one utterance for the current crop.
func StartRecordingHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := live.Engine.BeginRecording(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessionView(live))
}

// SubmitRecordingHandler finishes the in-progress recording: the captured
// audio is uploaded, recognized, scored against the current crop, and the
// workflow advances one repetition slot.
func SubmitRecordingHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := c.Request.ParseMultipartForm(maxRecordingSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse multipart form: %v. Max size: %d MB", err, maxRecordingSize>>20)})
		return
	}

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		if err == http.ErrMissingFile {
			c.JSON(http.StatusBadRequest, gin.H{"error": "audio_file is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get audio_file: %v", err)})
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	result, err := DefaultService.ProcessRecording(
		c.Request.Context(), live,
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, sessionengine.ErrNotReady):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, sessionengine.ErrStaleTranscript):
			// The session was aborted while this recording was being processed.
			c.JSON(http.StatusConflict, gin.H{"error": "Session ended before the transcript resolved; result dropped"})
		case errors.Is(err, vendoradapters.ErrRecognitionFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process recording: " + err.Error()})
		}
		return
	}

	view := sessionView(live)
	view["result"] = result
	c.JSON(http.StatusOK, view)
}

// AdvanceHandler moves the session to the next crop once all repetitions for
// the current crop are scored.
func AdvanceHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := DefaultService.Advance(live); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessionView(live))
}

// AbortSessionHandler ends the session immediately, keeping everything
// recorded so far.
func AbortSessionHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	DefaultService.Abort(live)
	c.JSON(http.StatusOK, sessionView(live))
}

// SummaryHandler returns the running counts for a session.
func SummaryHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, live.Engine.Summary())
}

// ExportHandler returns a downloadable JSON snapshot of the session's
// results. Exporting does not end or reset the session.
func ExportHandler(c *gin.Context) {
	live, ok := DefaultService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	export, err := DefaultService.Export(live)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export session: " + err.Error()})
		return
	}

	filename := ExportFilename(export.QAName, export.ExportTimestamp)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, export)
}

// ListSessionResultsHandler returns the persisted per-utterance rows for a
// session, including WER/CER diagnostics and audio object keys.
func ListSessionResultsHandler(c *gin.Context) {
	id := c.Param("id")
	if _, ok := DefaultService.Get(id); !ok {
		// Fall back to the datastore for sessions from earlier process runs.
		if _, err := datastore.GetTestSession(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
	}

	results, err := datastore.ListUtteranceResultsBySession(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list session results: " + err.Error()})
		return
	}

	if results == nil {
		results = []*datastore.UtteranceResult{}
	}
	c.JSON(http.StatusOK, results)
}
