package transcript

import (
	"fmt"
	"strings"
	"time"
)

// SegmentJoiner is the separator inserted between segment texts when the
// full transcript text is derived. Matches the single-space join used by
// every exporter so that character offsets agree across formats.
const SegmentJoiner = " "

// Status describes the outcome of recognizing one input file.
type Status string

const (
	// StatusOK marks a result whose segments were fully recognized.
	StatusOK Status = "ok"
	// StatusFailed marks a result whose recognition failed; Err carries the cause.
	StatusFailed Status = "failed"
)

// Result represents the complete transcription of one input file. It is
// immutable after creation: the chunker and exporters read it but never
// modify it.
type Result struct {
	SourcePath string    `json:"source_path"`
	Language   string    `json:"language"`
	ModelName  string    `json:"model"`
	Duration   float64   `json:"duration"`
	Segments   []Segment `json:"segments"`
	FullText   string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	Status     Status    `json:"status"`
	Err        string    `json:"error,omitempty"`
}

// NewResult builds a Result from validated segments, deriving FullText from
// the segment texts. Segments are the single source of truth for the text.
func NewResult(sourcePath, language, modelName string, duration float64, segments []Segment) *Result {
	return &Result{
		SourcePath: sourcePath,
		Language:   language,
		ModelName:  modelName,
		Duration:   duration,
		Segments:   segments,
		FullText:   JoinSegments(segments),
		CreatedAt:  time.Now().UTC(),
		Status:     StatusOK,
	}
}

// NewFailedResult builds a Result recording a recognition failure for the
// given input. It carries no segments.
func NewFailedResult(sourcePath string, err error) *Result {
	return &Result{
		SourcePath: sourcePath,
		CreatedAt:  time.Now().UTC(),
		Status:     StatusFailed,
		Err:        err.Error(),
	}
}

// JoinSegments derives the full transcript text from segment texts using
// SegmentJoiner.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, SegmentJoiner)
}

// WordCount returns the number of whitespace-separated words in the full text.
func (r *Result) WordCount() int {
	return len(strings.Fields(r.FullText))
}

// Validate checks the Result against the segment-model invariants: every
// segment is individually valid, segments are ordered non-decreasingly by
// start, and FullText matches the text derived from the segments.
func (r *Result) Validate() error {
	for i := range r.Segments {
		if err := r.Segments[i].Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if i > 0 && r.Segments[i].Start < r.Segments[i-1].Start {
			return fmt.Errorf("segment %d: start %.3f precedes previous start %.3f",
				i, r.Segments[i].Start, r.Segments[i-1].Start)
		}
	}

	if derived := JoinSegments(r.Segments); derived != r.FullText {
		return fmt.Errorf("full text does not match text derived from segments")
	}

	return nil
}
