// Package chunker re-segments a transcript into bounded-size, offset-tracked
// chunks for retrieval pipelines.
//
// Chunk boundaries fall only between segments; each chunk's text is a
// contiguous slice of the transcript's full text. A non-first chunk carries
// the last Overlap characters of the previous chunk as a duplicated prefix
// for retrieval continuity, so ChunkSize bounds the characters a chunk newly
// contributes, not the carried prefix. Stripping that prefix from every
// non-first chunk and concatenating reproduces the full text exactly.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"whisperbatch/internal/transcript"
)

// Config controls chunking.
type Config struct {
	// ChunkSize is the maximum number of new characters per chunk. A single
	// segment longer than ChunkSize is emitted as its own oversized chunk
	// rather than split or dropped.
	ChunkSize int
	// Overlap is the number of trailing bytes of the previous chunk
	// duplicated at the head of the next one, widened if needed so the
	// prefix starts on a rune boundary. Must be smaller than ChunkSize.
	Overlap int
}

// DefaultOverlap is the overlap applied when chunking is enabled without an
// explicit overlap setting.
const DefaultOverlap = 200

// Chunk is one retrieval-sized slice of a transcript. Text always equals
// FullText[StartChar:EndChar]; for non-first chunks the leading PrefixLen
// characters duplicate the tail of the previous chunk.
type Chunk struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	StartChar int     `json:"start_char"`
	EndChar   int     `json:"end_char"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	PrefixLen int     `json:"-"`
}

// InvalidConfigError reports an unusable chunking configuration.
type InvalidConfigError struct {
	Reason string
}

// Error implements the error interface
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid chunk config: %s", e.Reason)
}

// Validate checks the Config bounds.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("chunk size must be positive, got %d", c.ChunkSize)}
	}
	if c.Overlap < 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("overlap must not be negative, got %d", c.Overlap)}
	}
	if c.Overlap >= c.ChunkSize {
		return &InvalidConfigError{Reason: fmt.Sprintf("overlap %d must be smaller than chunk size %d", c.Overlap, c.ChunkSize)}
	}
	return nil
}

// segment text span within the full text.
type span struct {
	start, end int
	startTime  float64
	endTime    float64
}

// Split partitions the result's full text into chunks. The result is read
// but never modified.
func Split(result *transcript.Result, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(result.Segments) == 0 {
		return nil, nil
	}

	spans := segmentSpans(result.Segments)
	fullText := result.FullText

	var chunks []Chunk
	joinerLen := len(transcript.SegmentJoiner)

	bodyStart := 0 // char offset where the current chunk's new content begins
	bodyLen := 0   // new characters accumulated in the current chunk
	lastEnd := 0   // char offset one past the last accepted segment

	closeChunk := func() {
		prefixLen := 0
		startChar := bodyStart
		if len(chunks) > 0 {
			prev := &chunks[len(chunks)-1]
			prefixLen = cfg.Overlap
			if textLen := prev.EndChar - prev.StartChar; prefixLen > textLen {
				prefixLen = textLen
			}
			startChar = prev.EndChar - prefixLen
			// Back off to a rune boundary so the prefix never starts
			// mid-rune on multi-byte text.
			for startChar > 0 && !utf8.RuneStart(fullText[startChar]) {
				startChar--
			}
			prefixLen = prev.EndChar - startChar
		}

		chunk := Chunk{
			Index:     len(chunks),
			Text:      fullText[startChar:lastEnd],
			StartChar: startChar,
			EndChar:   lastEnd,
			PrefixLen: prefixLen,
		}
		chunk.StartTime, chunk.EndTime = coveredTimeRange(spans, startChar, lastEnd)
		chunks = append(chunks, chunk)
	}

	for i, sp := range spans {
		segLen := sp.end - sp.start
		addition := segLen
		if bodyLen > 0 {
			addition += joinerLen
		}

		if bodyLen > 0 && bodyLen+addition > cfg.ChunkSize {
			closeChunk()
			bodyStart = spans[i].start
			bodyLen = 0
			addition = segLen
		}

		bodyLen += addition
		lastEnd = sp.end
	}

	if bodyLen > 0 {
		closeChunk()
	}

	return chunks, nil
}

// segmentSpans computes each segment's text span within the joined full text.
func segmentSpans(segments []transcript.Segment) []span {
	spans := make([]span, len(segments))
	offset := 0
	for i, seg := range segments {
		if i > 0 {
			offset += len(transcript.SegmentJoiner)
		}
		spans[i] = span{
			start:     offset,
			end:       offset + len(seg.Text),
			startTime: seg.Start,
			endTime:   seg.End,
		}
		offset = spans[i].end
	}
	return spans
}

// coveredTimeRange maps a char range back onto the segments it touches,
// taking the minimum start and maximum end among them.
func coveredTimeRange(spans []span, startChar, endChar int) (float64, float64) {
	first := true
	var start, end float64
	for _, sp := range spans {
		if sp.end <= startChar || sp.start >= endChar {
			continue
		}
		if first {
			start, end = sp.startTime, sp.endTime
			first = false
			continue
		}
		if sp.startTime < start {
			start = sp.startTime
		}
		if sp.endTime > end {
			end = sp.endTime
		}
	}
	return start, end
}
