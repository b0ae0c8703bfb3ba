package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// MarkdownExporter renders a transcript as Markdown: a YAML frontmatter
// block with the transcript metadata, a title heading, then one
// `[HH:MM:SS] text` paragraph per segment in order.
type MarkdownExporter struct{}

// Extension returns the output file extension for Markdown.
func (e *MarkdownExporter) Extension() string { return "md" }

// Export serializes the result as Markdown bytes.
func (e *MarkdownExporter) Export(result *transcript.Result, chunks []chunker.Chunk) ([]byte, error) {
	title := baseName(result.SourcePath)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", title)
	fmt.Fprintf(&b, "duration: %.0f\n", result.Duration)
	fmt.Fprintf(&b, "language: %s\n", result.Language)
	fmt.Fprintf(&b, "model: %s\n", result.ModelName)
	fmt.Fprintf(&b, "transcribed_at: %s\n", result.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "word_count: %d\n", result.WordCount())
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", title)

	for _, seg := range result.Segments {
		fmt.Fprintf(&b, "[%s] %s\n\n", formatTimestamp(seg.Start), seg.Text)
	}

	if len(chunks) > 0 {
		b.WriteString("## Chunks\n\n")
		for _, chunk := range chunks {
			fmt.Fprintf(&b, "### Chunk %d [%s - %s]\n\n%s\n\n",
				chunk.Index,
				formatTimestamp(chunk.StartTime),
				formatTimestamp(chunk.EndTime),
				chunk.Text)
		}
	}

	return []byte(b.String()), nil
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
