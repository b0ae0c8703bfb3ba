package transcriber

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

//go:embed assets/faster_whisper.py
var whisperScript []byte

// ModelNames lists the recognized Whisper model sizes.
var ModelNames = []string{"tiny", "base", "small", "medium", "large-v3"}

// IsKnownModel reports whether name is a recognized Whisper model size.
func IsKnownModel(name string) bool {
	for _, m := range ModelNames {
		if m == name {
			return true
		}
	}
	return false
}

// WhisperEngine implements the Engine interface by shelling out to a
// faster-whisper helper script that emits JSON on stdout.
type WhisperEngine struct {
	modelName  string
	device     string
	python     string
	scriptPath string
	logger     *zap.Logger
	loaded     bool
}

// NewWhisperEngine creates a new WhisperEngine instance
func NewWhisperEngine(modelName, device string, logger *zap.Logger) *WhisperEngine {
	python := os.Getenv("WHISPERBATCH_PYTHON")
	if python == "" {
		python = "python3"
	}
	return &WhisperEngine{
		modelName: modelName,
		device:    device,
		python:    python,
		logger:    logger,
	}
}

// Load verifies the Python runtime is available and materializes the helper
// script. A failure here means no input in the batch can be recognized.
func (w *WhisperEngine) Load(ctx context.Context) error {
	if w.loaded {
		return nil
	}

	if !IsKnownModel(w.modelName) {
		return fmt.Errorf("unknown model %q (expected one of %s)",
			w.modelName, strings.Join(ModelNames, ", "))
	}

	if _, err := exec.LookPath(w.python); err != nil {
		return fmt.Errorf("python runtime %q not found: %w", w.python, err)
	}

	scriptPath := filepath.Join(os.TempDir(), "whisperbatch_faster_whisper.py")
	if err := os.WriteFile(scriptPath, whisperScript, 0o755); err != nil {
		return fmt.Errorf("write helper script: %w", err)
	}
	w.scriptPath = scriptPath
	w.loaded = true

	w.logger.Info("whisper engine ready",
		zap.String("model", w.modelName),
		zap.String("device", w.device),
		zap.String("python", w.python))

	return nil
}

// helper script output shape.
type whisperOutput struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		Confidence float32 `json:"confidence"`
	} `json:"segments"`
}

// Decode runs one inference call over the extracted audio file.
func (w *WhisperEngine) Decode(ctx context.Context, audioPath string, languageHint string) (*EngineOutput, error) {
	if !w.loaded {
		return nil, fmt.Errorf("whisper engine not loaded")
	}

	if languageHint == "" {
		languageHint = LanguageAuto
	}

	cmd := exec.CommandContext(ctx, w.python, w.scriptPath,
		"--audio", audioPath,
		"--model", w.modelName,
		"--language", languageHint,
		"--device", w.device,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	w.logger.Debug("invoking whisper helper",
		zap.String("audio", audioPath),
		zap.String("language", languageHint))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("whisper helper failed: %s", detail)
		}
		return nil, fmt.Errorf("whisper helper failed: %w", err)
	}

	var parsed whisperOutput
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return nil, fmt.Errorf("parse whisper helper output: %w", err)
	}

	output := &EngineOutput{
		Language: parsed.Language,
		Duration: parsed.Duration,
		Segments: make([]EngineSegment, 0, len(parsed.Segments)),
	}
	for _, seg := range parsed.Segments {
		output.Segments = append(output.Segments, EngineSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		})
	}

	return output, nil
}

// Close removes the materialized helper script.
func (w *WhisperEngine) Close() error {
	if w.scriptPath != "" {
		if err := os.Remove(w.scriptPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove helper script: %w", err)
		}
		w.scriptPath = ""
	}
	w.loaded = false
	return nil
}
