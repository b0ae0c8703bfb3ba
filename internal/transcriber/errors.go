package transcriber

import "fmt"

// ErrorKind classifies recognition failures so the batch layer can report
// them without depending on engine-specific error types.
type ErrorKind string

const (
	// KindUnreadableInput means the media layer could not decode the input file.
	KindUnreadableInput ErrorKind = "unreadable_input"
	// KindEngineFailure means the recognition engine raised during inference.
	KindEngineFailure ErrorKind = "engine_failure"
	// KindTimeout means the engine exceeded the configured wall-clock budget.
	KindTimeout ErrorKind = "timeout"
)

// RecognitionError wraps a recognition-stage failure for one input with its
// classified kind.
type RecognitionError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// Error implements the error interface
func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed (%s) for %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// newError builds a RecognitionError for the given input and kind.
func newError(kind ErrorKind, path string, err error) *RecognitionError {
	return &RecognitionError{Kind: kind, Path: path, Err: err}
}
