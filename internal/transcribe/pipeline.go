package transcribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/fileutil"
	"scribe/internal/jobs"
	"scribe/internal/logging"
	"scribe/internal/media/ffprobe"
	"scribe/internal/recognizer"
	"scribe/internal/services"
	"scribe/internal/services/ffmpeg"
	"scribe/internal/subtitles"
)

// Output format names accepted by a Request.
const (
	FormatText = "txt"
	FormatSRT  = "srt"
)

// Request describes one file to transcribe. An empty OutputPath streams the
// rendered transcript to the pipeline's stdout writer instead of a file.
type Request struct {
	InputPath  string
	OutputPath string
	Format     string
	ModelName  string
	Language   string
}

// Summary reports what a completed run consumed and produced.
type Summary struct {
	InputPath      string
	OutputPath     string
	Format         string
	Results        int
	Words          int
	Cues           int
	ConsumedBytes  int64
	AudioSeconds   float64
	ElapsedSeconds float64
	RealTimeFactor float64
}

// ProbeFunc matches ffprobe.Inspect and exists so tests can stub the probe.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Pipeline runs transcriptions against one loaded recognizer engine.
type Pipeline struct {
	cfg     *config.Config
	engine  recognizer.Engine
	decoder *ffmpeg.Decoder
	probe   ProbeFunc
	store   *jobs.Store
	logger  *slog.Logger
	stdout  io.Writer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger to the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStore enables best-effort run history recording.
func WithStore(store *jobs.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithDecoder replaces the ffmpeg decoder, primarily for tests.
func WithDecoder(decoder *ffmpeg.Decoder) Option {
	return func(p *Pipeline) {
		if decoder != nil {
			p.decoder = decoder
		}
	}
}

// WithProbe replaces the media probe, primarily for tests.
func WithProbe(probe ProbeFunc) Option {
	return func(p *Pipeline) {
		if probe != nil {
			p.probe = probe
		}
	}
}

// WithStdout redirects transcript output for requests without an OutputPath.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.stdout = w
		}
	}
}

// New builds a Pipeline around the provided engine. The engine may be shared
// across pipelines and runs; sessions are created per run.
func New(cfg *config.Config, engine recognizer.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		engine: engine,
		logger: logging.NewNop(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.decoder == nil {
		p.decoder = ffmpeg.NewDecoder(cfg.FFmpegBinary())
	}
	if p.probe == nil {
		p.probe = ffprobe.Inspect
	}
	return p
}

// Run executes one transcription. The first error aborts the run and
// propagates unrecovered; a failed run produces no output file.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	summary := Summary{InputPath: req.InputPath, OutputPath: req.OutputPath, Format: req.Format}

	if err := p.validate(req); err != nil {
		return summary, err
	}

	logger := p.logger.With(logging.String("input", req.InputPath))
	job := p.beginJob(ctx, req, logger)
	fail := func(err error) (Summary, error) {
		p.finishJobFailure(job, err, logger)
		return summary, err
	}

	probed, err := p.probe(ctx, p.cfg.FFprobeBinary(), req.InputPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(ctxErr)
		}
		return fail(services.Wrap(services.ErrUnsupportedMedia, "transcribe", "probe input", req.InputPath, err))
	}
	if !probed.HasAudio() {
		return fail(services.Wrap(services.ErrUnsupportedMedia, "transcribe", "probe input", req.InputPath+" has no audio stream", nil))
	}
	if audio, ok := probed.FirstAudioStream(); ok {
		logger.Debug("probed input",
			logging.Args(
				logging.String("codec", audio.CodecName),
				logging.Float64("duration_seconds", probed.DurationSeconds()),
				logging.Int("audio_streams", probed.AudioStreamCount()),
				logging.Int64("size_bytes", probed.SizeBytes()),
			)...)
	}

	logger.Info("transcription started",
		logging.Args(
			logging.String("format", req.Format),
			logging.String("model", req.ModelName),
		)...)

	// Cancellation must kill the decode process so the stream drain in
	// Close cannot block on a stalled pipe.
	decodeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := p.decoder.Open(decodeCtx, req.InputPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(ctxErr)
		}
		return fail(err)
	}
	streamClosed := false
	defer func() {
		if !streamClosed {
			_ = stream.Close()
		}
	}()

	session, err := p.engine.NewSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer session.Close()

	seq, consumed, collectErr := recognizer.Collect(stream, session)
	streamClosed = true
	closeErr := stream.Close()
	// A canceled run reports cancellation, not the pipe errors it caused.
	if closeErr != nil && (collectErr == nil || errors.Is(closeErr, context.Canceled)) {
		return fail(closeErr)
	}
	if collectErr != nil {
		return fail(collectErr)
	}

	var content string
	var cueCount int
	switch req.Format {
	case FormatSRT:
		cues := subtitles.CuesFromSequence(seq)
		content = subtitles.Compose(cues)
		cueCount = len(cues)
	default:
		content = seq.Text()
	}

	if req.OutputPath != "" {
		if err := fileutil.WriteFileAtomic(req.OutputPath, []byte(content), 0o644); err != nil {
			return fail(services.Wrap(services.ErrPath, "transcribe", "write output", req.OutputPath, err))
		}
	} else if _, err := io.WriteString(p.stdout, content); err != nil {
		return fail(services.Wrap(services.ErrPath, "transcribe", "write output", "stdout", err))
	}

	elapsed := time.Since(start)
	summary.Results = len(seq)
	summary.Words = seq.WordCount()
	summary.Cues = cueCount
	summary.ConsumedBytes = consumed
	summary.AudioSeconds = float64(consumed) / recognizer.BytesPerSecond
	summary.ElapsedSeconds = elapsed.Seconds()
	if summary.ElapsedSeconds > 0 {
		summary.RealTimeFactor = summary.AudioSeconds / summary.ElapsedSeconds
	}

	p.finishJobSuccess(job, summary, logger)
	logger.Info("transcription complete",
		logging.Args(
			logging.String("output", outputLabel(req.OutputPath)),
			logging.Int("words", summary.Words),
			logging.Int("cues", summary.Cues),
			logging.Float64("audio_seconds", summary.AudioSeconds),
			logging.Duration("elapsed", elapsed),
			logging.Float64("xrt", summary.RealTimeFactor),
		)...)
	return summary, nil
}

func (p *Pipeline) validate(req Request) error {
	path := strings.TrimSpace(req.InputPath)
	if path == "" {
		return services.Wrap(services.ErrPath, "transcribe", "validate input", "input path required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrPath, "transcribe", "validate input", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrPath, "transcribe", "validate input", path+" is not a regular file", nil)
	}

	switch req.Format {
	case FormatText, FormatSRT:
	default:
		return services.Wrap(services.ErrConfiguration, "transcribe", "validate request", "unknown format "+req.Format, nil)
	}

	if req.OutputPath != "" {
		if err := fileutil.EnsureDir(filepath.Dir(req.OutputPath)); err != nil {
			return services.Wrap(services.ErrPath, "transcribe", "prepare output", req.OutputPath, err)
		}
	}
	return nil
}

// beginJob records the run as pending and immediately running. History is
// best effort; a nil return disables further recording for this run.
func (p *Pipeline) beginJob(ctx context.Context, req Request, logger *slog.Logger) *jobs.Job {
	if p.store == nil {
		return nil
	}
	job, err := p.store.NewJob(ctx, jobs.StartParams{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Format:     req.Format,
		ModelName:  req.ModelName,
		Language:   req.Language,
	})
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return nil
	}
	if err := p.store.MarkRunning(ctx, job.ID); err != nil {
		logger.Warn("run history update failed", logging.Error(err))
	}
	return job
}

// Final history writes use a fresh context so a canceled run still records.
func (p *Pipeline) finishJobSuccess(job *jobs.Job, summary Summary, logger *slog.Logger) {
	if p.store == nil || job == nil {
		return
	}
	metrics := jobs.Metrics{
		AudioSeconds:   summary.AudioSeconds,
		ElapsedSeconds: summary.ElapsedSeconds,
		RealTimeFactor: summary.RealTimeFactor,
		WordCount:      int64(summary.Words),
		CueCount:       int64(summary.Cues),
	}
	if err := p.store.MarkCompleted(context.Background(), job.ID, metrics); err != nil {
		logger.Warn("run history update failed", logging.Error(err))
	}
}

func (p *Pipeline) finishJobFailure(job *jobs.Job, runErr error, logger *slog.Logger) {
	if p.store == nil || job == nil {
		return
	}
	if err := p.store.MarkFailed(context.Background(), job.ID, services.Classify(runErr), runErr.Error()); err != nil {
		logger.Warn("run history update failed", logging.Error(err))
	}
}

func outputLabel(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
