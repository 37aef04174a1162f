package sessionengine

import "errors"

var (
	// ErrNotReady is returned when a workflow operation is invoked in a state
	// that does not permit it (e.g. beginRecording after the session completed).
	ErrNotReady = errors.New("session workflow not ready for this operation")

	// ErrStaleTranscript is returned when a transcript (or transcript error)
	// arrives for an attempt that is no longer pending, typically because the
	// session was aborted while recognition was in flight. Stale transcripts
	// are dropped, never appended.
	ErrStaleTranscript = errors.New("transcript does not match the pending recording attempt")
)
