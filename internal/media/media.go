package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SupportedExtensions lists the media file extensions the pipeline accepts.
var SupportedExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

// IsSupported reports whether the path carries a recognized media extension.
func IsSupported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Info describes the decodable content of a media file.
type Info struct {
	Duration float64
	Format   string
	HasAudio bool
}

// Extractor probes and decodes media files through the ffmpeg tool suite.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor instance
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ffprobe JSON output, format section only.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// Probe inspects the file with ffprobe and returns its media info. A file
// that ffprobe cannot parse, or that carries no audio stream, is reported
// as an error.
func (e *Extractor) Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	info := &Info{Format: parsed.Format.FormatName}
	if parsed.Format.Duration != "" {
		duration, err := strconv.ParseFloat(parsed.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", parsed.Format.Duration, err)
		}
		info.Duration = duration
	}

	for _, stream := range parsed.Streams {
		if stream.CodecType == "audio" {
			info.HasAudio = true
			break
		}
	}

	if !info.HasAudio {
		return nil, fmt.Errorf("no audio stream in %s", path)
	}

	e.logger.Debug("probed media file",
		zap.String("path", path),
		zap.Float64("duration_sec", info.Duration),
		zap.String("format", info.Format))

	return info, nil
}

// ExtractAudio decodes the input into a mono 16 kHz WAV file under tmpDir
// and returns its path. The caller owns the returned file.
func (e *Extractor) ExtractAudio(ctx context.Context, path string, tmpDir string) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(tmpDir, base+"_16k.wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", path,
		"-vn",
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg extract %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	e.logger.Debug("extracted audio",
		zap.String("input", path),
		zap.String("output", out))

	return out, nil
}
