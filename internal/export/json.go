package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// JSONExporter renders a transcript in the machine-readable JSON shape.
// The key names and presence are a compatibility contract: existing
// consumers parse this output.
type JSONExporter struct{}

// Extension returns the output file extension for JSON.
func (e *JSONExporter) Extension() string { return "json" }

type jsonMetadata struct {
	Filename      string  `json:"filename"`
	Duration      float64 `json:"duration"`
	Language      string  `json:"language"`
	Model         string  `json:"model"`
	TranscribedAt string  `json:"transcribed_at"`
	WordCount     int     `json:"word_count"`
}

type jsonSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonDocument struct {
	Metadata jsonMetadata    `json:"metadata"`
	Segments []jsonSegment   `json:"segments"`
	Text     string          `json:"text"`
	Chunks   []chunker.Chunk `json:"chunks,omitempty"`
}

// Export serializes the result as indented JSON bytes.
func (e *JSONExporter) Export(result *transcript.Result, chunks []chunker.Chunk) ([]byte, error) {
	doc := jsonDocument{
		Metadata: jsonMetadata{
			Filename:      filepath.Base(result.SourcePath),
			Duration:      result.Duration,
			Language:      result.Language,
			Model:         result.ModelName,
			TranscribedAt: result.CreatedAt.Format(time.RFC3339),
			WordCount:     result.WordCount(),
		},
		Segments: make([]jsonSegment, 0, len(result.Segments)),
		Text:     result.FullText,
		Chunks:   chunks,
	}

	for _, seg := range result.Segments {
		doc.Segments = append(doc.Segments, jsonSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcript to JSON: %w", err)
	}

	return append(data, '\n'), nil
}
