package export

import (
	"fmt"
	"strings"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// SRTExporter renders a transcript in the standard SubRip subtitle format:
// 1-based contiguous sequence numbers, `HH:MM:SS,mmm --> HH:MM:SS,mmm`
// timestamp lines and blank-line separated entries.
type SRTExporter struct{}

// Extension returns the output file extension for SRT.
func (e *SRTExporter) Extension() string { return "srt" }

// Export serializes the result as SRT bytes. Chunks are not part of the
// subtitle format and are ignored.
func (e *SRTExporter) Export(result *transcript.Result, _ []chunker.Chunk) ([]byte, error) {
	var b strings.Builder
	for i, seg := range result.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTimestamp(seg.Start), formatSRTTimestamp(seg.End))
		fmt.Fprintf(&b, "%s\n\n", seg.Text)
	}
	return []byte(b.String()), nil
}
