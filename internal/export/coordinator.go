package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

// OverwritePolicy governs what happens when an output file already exists.
type OverwritePolicy string

const (
	// Overwrite replaces existing output files.
	Overwrite OverwritePolicy = "overwrite"
	// SkipIfExists leaves existing output files untouched.
	SkipIfExists OverwritePolicy = "skip"
	// FailIfExists treats an existing output file as a write failure.
	FailIfExists OverwritePolicy = "fail"
)

// ParseOverwritePolicy converts a user-supplied policy name into an
// OverwritePolicy.
func ParseOverwritePolicy(name string) (OverwritePolicy, error) {
	switch OverwritePolicy(name) {
	case Overwrite, SkipIfExists, FailIfExists:
		return OverwritePolicy(name), nil
	default:
		return "", fmt.Errorf("unknown overwrite policy %q (expected overwrite, skip or fail)", name)
	}
}

// WriteError wraps an export-stage filesystem failure for one output path.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Coordinator selects exporters for the requested formats and writes their
// output under the output directory, one file per format named
// `<basename>.<ext>`.
type Coordinator struct {
	logger *zap.Logger
}

// NewCoordinator creates a new Coordinator instance
func NewCoordinator(logger *zap.Logger) *Coordinator {
	return &Coordinator{logger: logger}
}

// Write exports the result in every requested format and returns the paths
// written, in the order the formats were requested. Paths skipped under
// SkipIfExists are not included. Filesystem failures are returned as
// *WriteError without retry.
func (c *Coordinator) Write(result *transcript.Result, chunks []chunker.Chunk, formats []Format, outputDir string, policy OverwritePolicy) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &WriteError{Path: outputDir, Err: err}
	}

	stem := baseName(result.SourcePath)

	written := make([]string, 0, len(formats))
	for _, format := range formats {
		exporter, err := ForFormat(format)
		if err != nil {
			return written, err
		}

		outPath := filepath.Join(outputDir, stem+"."+exporter.Extension())

		if _, err := os.Stat(outPath); err == nil {
			switch policy {
			case SkipIfExists:
				c.logger.Info("output exists, skipping",
					zap.String("path", outPath),
					zap.String("format", string(format)))
				continue
			case FailIfExists:
				return written, &WriteError{Path: outPath, Err: os.ErrExist}
			}
		}

		data, err := exporter.Export(result, chunks)
		if err != nil {
			return written, fmt.Errorf("export %s as %s: %w", result.SourcePath, format, err)
		}

		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return written, &WriteError{Path: outPath, Err: err}
		}

		c.logger.Debug("wrote output file",
			zap.String("path", outPath),
			zap.String("format", string(format)),
			zap.Int("bytes", len(data)))

		written = append(written, outPath)
	}

	return written, nil
}
