package transcriber

import "context"

// EngineSegment is one timed unit of speech as reported by the engine,
// before the adapter normalizes it into the transcript model.
type EngineSegment struct {
	Start      float64
	End        float64
	Text       string
	Confidence float32
}

// EngineOutput is the raw product of one inference call.
type EngineOutput struct {
	Language string
	Duration float64
	Segments []EngineSegment
}

// Engine interface defines the operations needed from the external
// speech-recognition engine. Implementations are not assumed safe for
// concurrent use; the adapter serializes calls.
type Engine interface {
	// Load prepares the engine for inference. A Load failure is fatal for
	// the whole batch, not a per-item condition.
	Load(ctx context.Context) error
	// Decode transcribes the audio file at audioPath. languageHint is an
	// ISO language code or LanguageAuto.
	Decode(ctx context.Context, audioPath string, languageHint string) (*EngineOutput, error)
	Close() error
}

// LanguageAuto is the sentinel language hint requesting engine-side
// language detection.
const LanguageAuto = "auto"
