package pipeline

import "errors"

// Sentinel errors for pipeline runs.
var (
	// ErrOutputExists indicates an artifact file already exists and overwriting
	// was not requested.
	ErrOutputExists = errors.New("output file already exists")

	// ErrMissingCollaborator indicates New was called with a nil dependency.
	ErrMissingCollaborator = errors.New("pipeline collaborator is nil")

	// ErrEmptyVideoID indicates Run was called without a video ID.
	ErrEmptyVideoID = errors.New("video ID is empty")
)

// StageError reports the stage a run failed in.
// Use errors.As to tell a failed fetch from a failed rewrite.
type StageError struct {
	Stage   Stage
	VideoID string
	Err     error
}

func (e *StageError) Error() string {
	return string(e.Stage) + " " + e.VideoID + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }
