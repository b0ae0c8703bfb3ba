package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"whisperbatch/internal/media"
	"whisperbatch/internal/transcript"
)

// MediaExtractor defines the media-layer operations the adapter needs.
// *media.Extractor satisfies it.
type MediaExtractor interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
	ExtractAudio(ctx context.Context, path string, tmpDir string) (string, error)
}

// Adapter drives one input file through the media layer and the recognition
// engine and converts the raw engine output into a transcript.Result. It is
// all-or-nothing per input: on failure no partial result is returned.
//
// The engine is treated as a shared, non-reentrant resource: Decode calls
// are serialized even when item scheduling is concurrent.
type Adapter struct {
	engine    Engine
	extractor MediaExtractor
	modelName string
	timeout   time.Duration
	logger    *zap.Logger

	mu sync.Mutex
}

// NewAdapter creates a new Adapter instance
func NewAdapter(engine Engine, extractor MediaExtractor, modelName string, timeout time.Duration, logger *zap.Logger) *Adapter {
	return &Adapter{
		engine:    engine,
		extractor: extractor,
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}
}

// Load prepares the underlying engine. Failures here abort the whole batch.
func (a *Adapter) Load(ctx context.Context) error {
	if err := a.engine.Load(ctx); err != nil {
		return fmt.Errorf("load recognition engine: %w", err)
	}
	return nil
}

// Close releases the underlying engine.
func (a *Adapter) Close() error {
	return a.engine.Close()
}

// Recognize transcribes one input file. languageHint is a language code or
// LanguageAuto. Failures are returned as *RecognitionError with a
// classified kind.
func (a *Adapter) Recognize(ctx context.Context, inputPath string, languageHint string) (*transcript.Result, error) {
	a.logger.Info("recognizing input",
		zap.String("path", inputPath),
		zap.String("language_hint", languageHint),
		zap.String("model", a.modelName))

	if !media.IsSupported(inputPath) {
		return nil, newError(KindUnreadableInput, inputPath,
			fmt.Errorf("unsupported media extension"))
	}

	info, err := a.extractor.Probe(ctx, inputPath)
	if err != nil {
		return nil, newError(KindUnreadableInput, inputPath, err)
	}

	audioPath, err := a.extractor.ExtractAudio(ctx, inputPath, "")
	if err != nil {
		return nil, newError(KindUnreadableInput, inputPath, err)
	}
	defer os.Remove(audioPath)

	decodeCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		decodeCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.mu.Lock()
	output, err := a.engine.Decode(decodeCtx, audioPath, languageHint)
	a.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(decodeCtx.Err(), context.DeadlineExceeded) {
			return nil, newError(KindTimeout, inputPath, err)
		}
		// A caller cancellation is not an engine fault; surface it as-is.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, newError(KindEngineFailure, inputPath, err)
	}

	segments := normalizeSegments(output.Segments)

	language := output.Language
	if language == "" {
		language = languageHint
	}

	duration := output.Duration
	if duration == 0 {
		duration = info.Duration
	}

	result := transcript.NewResult(inputPath, language, a.modelName, duration, segments)
	if err := result.Validate(); err != nil {
		return nil, newError(KindEngineFailure, inputPath,
			fmt.Errorf("engine produced invalid segments: %w", err))
	}

	a.logger.Info("recognition completed",
		zap.String("path", inputPath),
		zap.String("language", language),
		zap.Int("segments", len(segments)),
		zap.Int("words", result.WordCount()))

	return result, nil
}

// normalizeSegments trims segment texts, drops whitespace-only segments and
// restores non-decreasing start order.
func normalizeSegments(raw []EngineSegment) []transcript.Segment {
	segments := make([]transcript.Segment, 0, len(raw))
	for _, seg := range raw {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       text,
			Confidence: seg.Confidence,
		})
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	return segments
}
