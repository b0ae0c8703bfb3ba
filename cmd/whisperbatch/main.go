package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisperbatch/internal/batch"
	"whisperbatch/internal/config"
	"whisperbatch/internal/export"
	"whisperbatch/internal/logger"
	"whisperbatch/internal/media"
	"whisperbatch/internal/transcriber"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "whisperbatch",
		Short:   "Batch transcription of audio/video files with local Whisper models",
		Version: version,
	}

	rootCmd.AddCommand(transcribeCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(formatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func transcribeCmd() *cobra.Command {
	var (
		configFile string
		outputDir  string
		language   string
		model      string
		formats    []string
		chunkSize  int
		overlap    int
		workers    int
		overwrite  string
		recursive  bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe [inputs...]",
		Short: "Transcribe audio/video files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(configFile)
			if err != nil {
				return err
			}

			// Flags override config file and environment values.
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Set("batch.output_dir", outputDir)
			}
			if flags.Changed("language") {
				cfg.Set("batch.language", language)
			}
			if flags.Changed("model") {
				cfg.Set("whisper.model", model)
			}
			if flags.Changed("format") {
				cfg.Set("batch.formats", formats)
			}
			if flags.Changed("chunk-size") {
				cfg.Set("chunk.size", chunkSize)
			}
			if flags.Changed("overlap") {
				cfg.Set("chunk.overlap", overlap)
			}
			if flags.Changed("workers") {
				cfg.Set("batch.workers", workers)
			}
			if flags.Changed("overwrite") {
				cfg.Set("batch.overwrite_policy", overwrite)
			}
			if flags.Changed("recursive") {
				cfg.Set("batch.recursive", recursive)
			}

			return runTranscribe(cfg, args, verbose)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language code, or 'auto' to detect")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model size: tiny, base, small, medium, large-v3")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "Output formats: markdown, json, srt, txt")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in characters for retrieval export (0 disables)")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "Chunk overlap in characters")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent items (recognition stays serialized)")
	cmd.Flags().StringVar(&overwrite, "overwrite", "", "Overwrite policy: overwrite, skip or fail")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Search subdirectories of directory inputs")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// loadConfiguration prefers an explicit config file, then falls back to
// environment variables.
func loadConfiguration(configFile string) (*config.Configuration, error) {
	if configFile != "" {
		return config.NewConfigurationFromFile(configFile)
	}
	return config.NewConfigurationFromEnv()
}

// runTranscribe wires the pipeline and executes one batch run.
func runTranscribe(cfg *config.Configuration, inputs []string, verbose bool) error {
	zapLogger, err := logger.NewCLILogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	opts, err := cfg.BatchOptions()
	if err != nil {
		return err
	}

	engine := transcriber.NewWhisperEngine(cfg.GetModel(), cfg.GetDevice(), zapLogger)
	extractor := media.NewExtractor(zapLogger)
	adapter := transcriber.NewAdapter(engine, extractor, cfg.GetModel(), cfg.GetRecognitionTimeout(), zapLogger)
	defer adapter.Close()

	coordinator := export.NewCoordinator(zapLogger)
	orchestrator := batch.NewOrchestrator(adapter, coordinator, batch.NewLogObserver(zapLogger), zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	report, err := orchestrator.Run(ctx, inputs, opts)
	printReport(report)

	var abort *batch.AbortError
	if errors.As(err, &abort) {
		return abort
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printReport writes the per-item outcomes and aggregate counts to stdout.
func printReport(report *batch.Report) {
	for _, item := range report.Items {
		switch item.Status {
		case batch.ItemOK:
			fmt.Printf("ok      %s -> %s\n", item.SourcePath, strings.Join(item.OutputPaths, ", "))
		case batch.ItemFailed:
			fmt.Printf("failed  %s: %s\n", item.SourcePath, item.Err)
		case batch.ItemSkipped:
			fmt.Printf("skipped %s\n", item.SourcePath)
		}
	}
	fmt.Printf("\n%d succeeded, %d failed, %d skipped\n",
		report.Succeeded, report.Failed, report.Skipped)
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List recognized Whisper model sizes",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available models:")
			fmt.Println("  tiny       39M params, fastest, lowest quality")
			fmt.Println("  base       74M params")
			fmt.Println("  small      244M params")
			fmt.Println("  medium     769M params, best speed/quality balance")
			fmt.Println("  large-v3   1.5G params, highest quality")
		},
	}
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input and output formats",
		Run: func(cmd *cobra.Command, args []string) {
			exts := make([]string, 0, len(media.SupportedExtensions))
			for ext := range media.SupportedExtensions {
				exts = append(exts, ext)
			}
			sort.Strings(exts)

			fmt.Println("Input formats: " + strings.Join(exts, ", "))

			names := make([]string, 0, len(export.Formats))
			for _, format := range export.Formats {
				names = append(names, string(format))
			}
			fmt.Println("Output formats: " + strings.Join(names, ", "))
		},
	}
}
