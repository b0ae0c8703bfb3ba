package transcript

import (
	"fmt"
	"strings"
)

// Segment represents a single timed span of recognized speech as produced
// by the recognition engine.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence,omitempty"`
}

// Duration returns the length of the segment in seconds.
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}

// Validate checks if the Segment has valid values
func (s *Segment) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if s.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if s.End < s.Start {
		return fmt.Errorf("end must not be before start")
	}

	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0")
	}

	return nil
}
