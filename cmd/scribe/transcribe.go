package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/batch"
	"scribe/internal/config"
	"scribe/internal/jobs"
	"scribe/internal/logging"
	"scribe/internal/models"
	"scribe/internal/notifications"
	"scribe/internal/preflight"
	"scribe/internal/recognizer"
	"scribe/internal/recognizer/voskengine"
	"scribe/internal/recognizer/voskserver"
	"scribe/internal/transcribe"
)

type transcribeOptions struct {
	input     string
	output    string
	format    string
	language  string
	modelName string
	modelPath string
	workers   int
}

func addTranscribeFlags(cmd *cobra.Command, opts *transcribeOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Audio or video file, or a directory of them")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file or directory (single files default to stdout)")
	flags.StringVarP(&opts.format, "format", "f", "", "Transcript format: txt or srt")
	flags.StringVarP(&opts.language, "language", "l", "", "Model language code, for example en-us or fr")
	flags.StringVar(&opts.modelName, "model-name", "", "Model name from the Vosk catalog")
	flags.StringVar(&opts.modelPath, "model", "", "Directory of an already downloaded model")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent transcriptions for directory input")
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	opts := &transcribeOptions{}
	cmd := &cobra.Command{
		Use:   "transcribe [flags] [input]",
		Short: "Transcribe audio or video into text or subtitles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, ctx, opts, args)
		},
	}
	addTranscribeFlags(cmd, opts)
	return cmd
}

func runTranscribe(cmd *cobra.Command, ctx *commandContext, opts *transcribeOptions, args []string) error {
	runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	if len(args) > 1 {
		return errors.New("pass one input; use a directory to batch files")
	}
	input := strings.TrimSpace(opts.input)
	if input == "" && len(args) == 1 {
		input = strings.TrimSpace(args[0])
	}
	if input == "" {
		return errors.New("input required: pass a file or directory, or use --input")
	}

	format := strings.TrimSpace(opts.format)
	if format == "" {
		format = cfg.Transcription.Format
	}
	languageCode := strings.TrimSpace(opts.language)
	if languageCode == "" {
		languageCode = cfg.Transcription.Language
	}

	// Directory input without --output falls back to the configured output
	// directory; Expand rejects directory input that still has none.
	output := strings.TrimSpace(opts.output)
	if output == "" {
		if info, statErr := os.Stat(input); statErr == nil && info.IsDir() {
			output = cfg.Paths.OutputDir
		}
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.WorkerCount()
	}

	if err := preflight.Gate(cfg); err != nil {
		return err
	}

	engine, modelName, err := buildEngine(runCtx, cfg, logger, modelSelection{
		explicitPath: strings.TrimSpace(opts.modelPath),
		modelName:    strings.TrimSpace(opts.modelName),
		language:     languageCode,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
	} else {
		defer store.Close()
	}

	pairs, err := batch.Expand(input, output, format)
	if err != nil {
		return err
	}

	pipeline := transcribe.New(cfg, engine,
		transcribe.WithLogger(logging.WithComponent(logger, "transcribe")),
		transcribe.WithStore(store),
		transcribe.WithStdout(cmd.OutOrStdout()),
	)
	driver := batch.NewDriver(pipeline,
		batch.WithWorkers(workers),
		batch.WithLogger(logging.WithComponent(logger, "batch")),
		batch.WithNotifier(notifications.NewService(cfg)),
	)

	report, err := driver.Run(runCtx, pairs, transcribe.Request{
		Format:    format,
		ModelName: modelName,
		Language:  languageCode,
	})
	if err != nil {
		return err
	}

	// Stdout runs print nothing but the transcript itself.
	if len(pairs) > 0 && pairs[0].OutputPath != "" {
		line := fmt.Sprintf("Transcribed %d of %d files in %s",
			report.Processed, len(pairs), report.Elapsed.Round(100*time.Millisecond))
		if report.AudioSeconds > 0 && report.Elapsed > 0 {
			line += fmt.Sprintf(" (%.2fx realtime)", report.AudioSeconds/report.Elapsed.Seconds())
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

// modelSelection carries the model inputs in descending precedence: an
// explicit directory, a named model, then a language lookup.
type modelSelection struct {
	explicitPath string
	modelName    string
	language     string
}

// buildEngine returns the recognizer for the configured mode along with the
// model name the run settled on. Server mode reports no name because the
// server owns its model.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, sel modelSelection) (recognizer.Engine, string, error) {
	if cfg.Recognizer.Mode == config.RecognizerModeServer {
		return voskserver.New(cfg.Recognizer.ServerURL), "", nil
	}

	req := models.Request{ExplicitPath: sel.explicitPath}
	if req.ExplicitPath == "" {
		req.ExplicitPath = cfg.Transcription.ModelPath
	}
	switch {
	case req.ExplicitPath != "":
	case sel.modelName != "":
		req.ModelName = sel.modelName
	case sel.language != "":
		req.Language = sel.language
	default:
		req.ModelName = cfg.Transcription.ModelName
	}

	dir, name, err := newModelResolver(cfg, logger).Resolve(ctx, req)
	if err != nil {
		return nil, "", err
	}
	engine, err := voskengine.New(dir)
	if err != nil {
		return nil, "", err
	}
	return engine, name, nil
}
