package export

import (
	"fmt"
	"strings"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// Format identifies one output format.
type Format string

const (
	// FormatMarkdown renders a metadata header plus timestamped paragraphs.
	FormatMarkdown Format = "markdown"
	// FormatJSON renders the machine-readable compatibility format.
	FormatJSON Format = "json"
	// FormatSRT renders standard subtitle blocks.
	FormatSRT Format = "srt"
	// FormatTXT renders the bare transcript text.
	FormatTXT Format = "txt"
)

// Formats lists every recognized output format.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatSRT, FormatTXT}

// Exporter serializes a transcription result (and optional chunks) into one
// output format. Implementations are pure: they derive solely from the
// result and never modify it.
type Exporter interface {
	Export(result *transcript.Result, chunks []chunker.Chunk) ([]byte, error)
	Extension() string
}

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSRT:
		return FormatSRT, nil
	case FormatTXT:
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected one of markdown, json, srt, txt)", name)
	}
}

// ForFormat returns the Exporter implementing the given format.
func ForFormat(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatSRT:
		return &SRTExporter{}, nil
	case FormatTXT:
		return &TXTExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
