package export

import (
	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// TXTExporter renders the bare transcript text with no metadata or
// timestamps.
type TXTExporter struct{}

// Extension returns the output file extension for plain text.
func (e *TXTExporter) Extension() string { return "txt" }

// Export serializes the full transcript text followed by a newline.
func (e *TXTExporter) Export(result *transcript.Result, _ []chunker.Chunk) ([]byte, error) {
	return []byte(result.FullText + "\n"), nil
}
