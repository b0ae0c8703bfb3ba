package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"whisperbatch/internal/export"
)

func TestConfiguration_Defaults(t *testing.T) {
	// Arrange
	cfg := NewConfiguration()

	// Assert
	assert.Equal(t, "medium", cfg.GetModel())
	assert.Equal(t, "auto", cfg.GetDevice())
	assert.Equal(t, 15*time.Minute, cfg.GetRecognitionTimeout())
	assert.Equal(t, "auto", cfg.GetLanguage())
	assert.Equal(t, []string{"markdown"}, cfg.GetFormats())
	assert.Equal(t, "./transcripts", cfg.GetOutputDir())
	assert.Equal(t, 1, cfg.GetWorkers())
	assert.False(t, cfg.GetRecursive())
	assert.Empty(t, cfg.GetOverwritePolicy())
	assert.Equal(t, 0, cfg.GetChunkSize())
	assert.Equal(t, 200, cfg.GetChunkOverlap())
}

func TestConfiguration_FromFile(t *testing.T) {
	t.Run("should load settings from a YAML config file", func(t *testing.T) {
		// Arrange - create temporary config file
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content, err := yaml.Marshal(map[string]interface{}{
			"whisper": map[string]interface{}{
				"model":       "large-v3",
				"timeout_sec": 120,
			},
			"batch": map[string]interface{}{
				"language":   "pt",
				"formats":    []string{"json", "srt"},
				"output_dir": "/data/transcripts",
				"workers":    2,
			},
			"chunk": map[string]interface{}{
				"size":    1200,
				"overlap": 150,
			},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(configFile, content, 0644))

		// Act
		cfg, err := NewConfigurationFromFile(configFile)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "large-v3", cfg.GetModel())
		assert.Equal(t, 2*time.Minute, cfg.GetRecognitionTimeout())
		assert.Equal(t, "pt", cfg.GetLanguage())
		assert.Equal(t, []string{"json", "srt"}, cfg.GetFormats())
		assert.Equal(t, "/data/transcripts", cfg.GetOutputDir())
		assert.Equal(t, 2, cfg.GetWorkers())
		assert.Equal(t, 1200, cfg.GetChunkSize())
		assert.Equal(t, 150, cfg.GetChunkOverlap())
	})

	t.Run("should keep defaults for keys the file omits", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("batch:\n  language: de\n"), 0644))

		cfg, err := NewConfigurationFromFile(configFile)

		require.NoError(t, err)
		assert.Equal(t, "de", cfg.GetLanguage())
		assert.Equal(t, "medium", cfg.GetModel())
		assert.Equal(t, 1, cfg.GetWorkers())
	})

	t.Run("should return error for non-existent config file", func(t *testing.T) {
		_, err := NewConfigurationFromFile("/nonexistent/config.yaml")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestConfiguration_FromEnv(t *testing.T) {
	t.Run("should load settings from environment variables", func(t *testing.T) {
		// Arrange
		os.Setenv("WHISPERBATCH_MODEL", "small")
		os.Setenv("WHISPERBATCH_LANGUAGE", "en")
		os.Setenv("WHISPERBATCH_OUTPUT_DIR", "/tmp/out")
		os.Setenv("WHISPERBATCH_CHUNK_SIZE", "800")
		defer func() {
			os.Unsetenv("WHISPERBATCH_MODEL")
			os.Unsetenv("WHISPERBATCH_LANGUAGE")
			os.Unsetenv("WHISPERBATCH_OUTPUT_DIR")
			os.Unsetenv("WHISPERBATCH_CHUNK_SIZE")
		}()

		// Act
		cfg, err := NewConfigurationFromEnv()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "small", cfg.GetModel())
		assert.Equal(t, "en", cfg.GetLanguage())
		assert.Equal(t, "/tmp/out", cfg.GetOutputDir())
		assert.Equal(t, 800, cfg.GetChunkSize())
	})

	t.Run("should load formats, recursive and overwrite policy from environment", func(t *testing.T) {
		// Arrange
		os.Setenv("WHISPERBATCH_FORMATS", "json srt")
		os.Setenv("WHISPERBATCH_RECURSIVE", "true")
		os.Setenv("WHISPERBATCH_OVERWRITE_POLICY", "fail")
		defer func() {
			os.Unsetenv("WHISPERBATCH_FORMATS")
			os.Unsetenv("WHISPERBATCH_RECURSIVE")
			os.Unsetenv("WHISPERBATCH_OVERWRITE_POLICY")
		}()

		// Act
		cfg, err := NewConfigurationFromEnv()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"json", "srt"}, cfg.GetFormats())
		assert.True(t, cfg.GetRecursive())
		assert.Equal(t, "fail", cfg.GetOverwritePolicy())
	})
}

func TestConfiguration_BatchOptions(t *testing.T) {
	t.Run("should materialize validated options", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set("batch.formats", []string{"markdown", "json"})
		cfg.Set("chunk.size", 1000)
		cfg.Set("chunk.overlap", 100)

		opts, err := cfg.BatchOptions()

		require.NoError(t, err)
		assert.Equal(t, []export.Format{export.FormatMarkdown, export.FormatJSON}, opts.Formats)
		assert.Equal(t, 1000, opts.ChunkSize)
		assert.Equal(t, 100, opts.ChunkOverlap)
		assert.Equal(t, 1, opts.Workers)
		assert.Empty(t, opts.Policy)
	})

	t.Run("should reject unknown format", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set("batch.formats", []string{"html"})

		_, err := cfg.BatchOptions()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})

	t.Run("should reject unknown overwrite policy", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set("batch.overwrite_policy", "maybe")

		_, err := cfg.BatchOptions()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown overwrite policy")
	})

	t.Run("should reject overlap larger than chunk size", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set("chunk.size", 100)
		cfg.Set("chunk.overlap", 300)

		_, err := cfg.BatchOptions()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be smaller than chunk size")
	})

	t.Run("should parse explicit overwrite policy", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set("batch.overwrite_policy", "skip")

		opts, err := cfg.BatchOptions()

		require.NoError(t, err)
		assert.Equal(t, export.SkipIfExists, opts.Policy)
	})
}
