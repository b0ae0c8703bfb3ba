package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/export"
	"whisperbatch/internal/media"
	"whisperbatch/internal/transcript"
)

// Recognizer is the recognition capability the orchestrator drives inputs
// through. *transcriber.Adapter satisfies it.
type Recognizer interface {
	Load(ctx context.Context) error
	Recognize(ctx context.Context, inputPath string, languageHint string) (*transcript.Result, error)
}

// AbortError marks a fatal, batch-level condition that stops the whole run,
// as opposed to a per-item failure. The partial report accumulated so far
// is still returned alongside it.
type AbortError struct {
	Err error
}

// Error implements the error interface
func (e *AbortError) Error() string {
	return fmt.Sprintf("batch aborted: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *AbortError) Unwrap() error {
	return e.Err
}

// Options is the validated, immutable option bundle for one batch run.
type Options struct {
	Language     string
	Formats      []export.Format
	OutputDir    string
	ChunkSize    int
	ChunkOverlap int
	Workers      int
	Recursive    bool
	// Policy left empty selects the default: Overwrite for a single-file
	// run, SkipIfExists for batches.
	Policy export.OverwritePolicy
}

// Validate checks the option bundle once at batch entry.
func (o *Options) Validate() error {
	if len(o.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if o.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	if o.ChunkSize < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", o.ChunkSize)
	}
	if o.ChunkSize > 0 {
		cfg := chunker.Config{ChunkSize: o.ChunkSize, Overlap: o.ChunkOverlap}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Orchestrator drives a set of inputs through recognition, chunking and
// export, isolating per-item failures and aggregating a batch report.
type Orchestrator struct {
	recognizer  Recognizer
	coordinator *export.Coordinator
	observer    Observer
	logger      *zap.Logger
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(recognizer Recognizer, coordinator *export.Coordinator, observer Observer, logger *zap.Logger) *Orchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Orchestrator{
		recognizer:  recognizer,
		coordinator: coordinator,
		observer:    observer,
		logger:      logger,
	}
}

// Run processes every input and returns the batch report. Per-item failures
// are recorded and do not stop the batch; a fatal engine-load failure
// returns an *AbortError together with the partial report. Report items
// appear in enumeration order regardless of worker count.
func (o *Orchestrator) Run(ctx context.Context, inputs []string, opts Options) (*Report, error) {
	report := newReport()

	if err := opts.Validate(); err != nil {
		return report, &AbortError{Err: err}
	}

	items, singleFile, err := o.discover(inputs, opts.Recursive)
	if err != nil {
		return report, &AbortError{Err: err}
	}
	if err := checkStemCollisions(items); err != nil {
		return report, &AbortError{Err: err}
	}

	policy := opts.Policy
	if policy == "" {
		if singleFile {
			policy = export.Overwrite
		} else {
			policy = export.SkipIfExists
		}
	}

	o.logger.Info("starting batch run",
		zap.String("run_id", report.RunID),
		zap.Int("inputs", len(items)),
		zap.Int("workers", opts.Workers),
		zap.String("overwrite_policy", string(policy)))

	if len(items) == 0 {
		o.observer.BatchFinished(report)
		return report, nil
	}

	if err := o.recognizer.Load(ctx); err != nil {
		abort := &AbortError{Err: err}
		o.observer.BatchFinished(report)
		return report, abort
	}

	results := make([]ItemResult, len(items))

	workers := opts.Workers
	if workers > len(items) {
		workers = len(items)
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				results[i] = o.processItem(ctx, items[i], opts, policy)
			}
		}()
	}

	scheduled := 0
dispatch:
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case indexCh <- i:
			scheduled++
		}
	}
	close(indexCh)
	wg.Wait()

	// Buffered results are appended in input order regardless of the order
	// workers finished in.
	for i := 0; i < scheduled; i++ {
		report.append(results[i])
	}
	for i := scheduled; i < len(items); i++ {
		report.append(ItemResult{
			SourcePath: items[i],
			Status:     ItemSkipped,
			Err:        "batch cancelled",
		})
	}

	o.observer.BatchFinished(report)

	o.logger.Info("batch run finished",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	return report, ctx.Err()
}

// processItem drives one input through recognition, chunking and export.
func (o *Orchestrator) processItem(ctx context.Context, path string, opts Options, policy export.OverwritePolicy) ItemResult {
	o.observer.ItemStarted(path)

	finish := func(item ItemResult) ItemResult {
		o.observer.ItemFinished(path, item.Status)
		return item
	}

	if policy == export.SkipIfExists && o.allOutputsExist(path, opts) {
		o.logger.Info("all outputs exist, skipping input", zap.String("path", path))
		return finish(ItemResult{SourcePath: path, Status: ItemSkipped})
	}

	result, err := o.recognizer.Recognize(ctx, path, opts.Language)
	if err != nil {
		// An item interrupted by batch cancellation is skipped, not failed.
		if errors.Is(err, context.Canceled) {
			return finish(ItemResult{SourcePath: path, Status: ItemSkipped, Err: "batch cancelled"})
		}
		o.logger.Warn("recognition failed",
			zap.String("path", path),
			zap.Error(err))
		return finish(ItemResult{SourcePath: path, Status: ItemFailed, Err: err.Error()})
	}

	var chunks []chunker.Chunk
	if opts.ChunkSize > 0 {
		cfg := chunker.Config{ChunkSize: opts.ChunkSize, Overlap: opts.ChunkOverlap}
		chunks, err = chunker.Split(result, cfg)
		if err != nil {
			return finish(ItemResult{SourcePath: path, Status: ItemFailed, Err: err.Error()})
		}
	}

	written, err := o.coordinator.Write(result, chunks, opts.Formats, opts.OutputDir, policy)
	if err != nil {
		o.logger.Warn("export failed",
			zap.String("path", path),
			zap.Error(err))
		return finish(ItemResult{SourcePath: path, Status: ItemFailed, OutputPaths: written, Err: err.Error()})
	}

	return finish(ItemResult{SourcePath: path, Status: ItemOK, OutputPaths: written})
}

// outputStem is the basename without extension that every output file for
// the input is named after.
func outputStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// checkStemCollisions rejects batches where two distinct inputs would write
// the same output files.
func checkStemCollisions(items []string) error {
	seen := make(map[string]string, len(items))
	for _, item := range items {
		stem := outputStem(item)
		if prev, ok := seen[stem]; ok && prev != item {
			return fmt.Errorf("inputs %s and %s both produce outputs named %s.*", prev, item, stem)
		}
		seen[stem] = item
	}
	return nil
}

// allOutputsExist reports whether every requested output file for the input
// is already present, which lets SkipIfExists avoid redoing recognition.
func (o *Orchestrator) allOutputsExist(path string, opts Options) bool {
	stem := outputStem(path)

	for _, format := range opts.Formats {
		exporter, err := export.ForFormat(format)
		if err != nil {
			return false
		}
		outPath := filepath.Join(opts.OutputDir, stem+"."+exporter.Extension())
		if _, err := os.Stat(outPath); err != nil {
			return false
		}
	}
	return true
}

// discover expands the input paths into the ordered item list. Directories
// expand to their supported media files sorted lexicographically; single
// files pass through unchanged. singleFile reports whether the whole run is
// exactly one explicitly named file.
func (o *Orchestrator) discover(inputs []string, recursive bool) ([]string, bool, error) {
	var items []string
	fileInputs := 0

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			// Missing inputs pass through so they surface as per-item
			// unreadable-input failures rather than aborting the batch.
			items = append(items, input)
			fileInputs++
			continue
		}

		if !info.IsDir() {
			items = append(items, input)
			fileInputs++
			continue
		}

		expanded, err := expandDirectory(input, recursive)
		if err != nil {
			return nil, false, fmt.Errorf("expand directory %s: %w", input, err)
		}
		items = append(items, expanded...)
	}

	return items, len(inputs) == 1 && fileInputs == 1, nil
}

// expandDirectory lists the supported media files under dir, sorted
// lexicographically by path for deterministic batch order.
func expandDirectory(dir string, recursive bool) ([]string, error) {
	var files []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && media.IsSupported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if media.IsSupported(path) {
				files = append(files, path)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
