package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"whisperbatch/internal/batch"
	"whisperbatch/internal/chunker"
	"whisperbatch/internal/export"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

// setDefaults applies the documented default for every recognized key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("whisper.model", "medium")
	v.SetDefault("whisper.device", "auto")
	v.SetDefault("whisper.timeout_sec", 900)
	v.SetDefault("batch.language", "auto")
	v.SetDefault("batch.formats", []string{"markdown"})
	v.SetDefault("batch.output_dir", "./transcripts")
	v.SetDefault("batch.workers", 1)
	v.SetDefault("batch.recursive", false)
	v.SetDefault("batch.overwrite_policy", "")
	v.SetDefault("chunk.size", 0)
	v.SetDefault("chunk.overlap", chunker.DefaultOverlap)
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WHISPERBATCH")
	v.AutomaticEnv()

	v.BindEnv("whisper.model", "WHISPERBATCH_MODEL")
	v.BindEnv("whisper.device", "WHISPERBATCH_DEVICE")
	v.BindEnv("whisper.timeout_sec", "WHISPERBATCH_TIMEOUT_SEC")
	v.BindEnv("batch.language", "WHISPERBATCH_LANGUAGE")
	v.BindEnv("batch.formats", "WHISPERBATCH_FORMATS")
	v.BindEnv("batch.output_dir", "WHISPERBATCH_OUTPUT_DIR")
	v.BindEnv("batch.workers", "WHISPERBATCH_WORKERS")
	v.BindEnv("batch.recursive", "WHISPERBATCH_RECURSIVE")
	v.BindEnv("batch.overwrite_policy", "WHISPERBATCH_OVERWRITE_POLICY")
	v.BindEnv("chunk.size", "WHISPERBATCH_CHUNK_SIZE")
	v.BindEnv("chunk.overlap", "WHISPERBATCH_CHUNK_OVERLAP")

	return &Configuration{viper: v}, nil
}

// Set overrides one configuration key, typically from a CLI flag.
func (c *Configuration) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// GetModel returns the configured Whisper model size
func (c *Configuration) GetModel() string {
	return c.viper.GetString("whisper.model")
}

// GetDevice returns the configured inference device (auto, cuda or cpu)
func (c *Configuration) GetDevice() string {
	return c.viper.GetString("whisper.device")
}

// GetRecognitionTimeout returns the wall-clock budget for one recognition call
func (c *Configuration) GetRecognitionTimeout() time.Duration {
	return time.Duration(c.viper.GetInt("whisper.timeout_sec")) * time.Second
}

// GetLanguage returns the configured language code or "auto"
func (c *Configuration) GetLanguage() string {
	return c.viper.GetString("batch.language")
}

// GetFormats returns the configured output format names
func (c *Configuration) GetFormats() []string {
	return c.viper.GetStringSlice("batch.formats")
}

// GetOutputDir returns the configured output directory
func (c *Configuration) GetOutputDir() string {
	return c.viper.GetString("batch.output_dir")
}

// GetWorkers returns the configured worker count
func (c *Configuration) GetWorkers() int {
	return c.viper.GetInt("batch.workers")
}

// GetRecursive returns whether directory inputs are searched recursively
func (c *Configuration) GetRecursive() bool {
	return c.viper.GetBool("batch.recursive")
}

// GetOverwritePolicy returns the configured overwrite policy name; empty
// selects the per-run default
func (c *Configuration) GetOverwritePolicy() string {
	return c.viper.GetString("batch.overwrite_policy")
}

// GetChunkSize returns the configured chunk size; zero disables chunking
func (c *Configuration) GetChunkSize() int {
	return c.viper.GetInt("chunk.size")
}

// GetChunkOverlap returns the configured chunk overlap
func (c *Configuration) GetChunkOverlap() int {
	return c.viper.GetInt("chunk.overlap")
}

// BatchOptions materializes and validates the immutable option bundle for
// one batch run.
func (c *Configuration) BatchOptions() (batch.Options, error) {
	names := c.GetFormats()
	formats := make([]export.Format, 0, len(names))
	for _, name := range names {
		format, err := export.ParseFormat(name)
		if err != nil {
			return batch.Options{}, err
		}
		formats = append(formats, format)
	}

	var policy export.OverwritePolicy
	if name := c.GetOverwritePolicy(); name != "" {
		parsed, err := export.ParseOverwritePolicy(name)
		if err != nil {
			return batch.Options{}, err
		}
		policy = parsed
	}

	opts := batch.Options{
		Language:     c.GetLanguage(),
		Formats:      formats,
		OutputDir:    c.GetOutputDir(),
		ChunkSize:    c.GetChunkSize(),
		ChunkOverlap: c.GetChunkOverlap(),
		Workers:      c.GetWorkers(),
		Recursive:    c.GetRecursive(),
		Policy:       policy,
	}

	if err := opts.Validate(); err != nil {
		return batch.Options{}, err
	}

	return opts, nil
}
