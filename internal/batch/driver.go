package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/services"
	"scribe/internal/transcribe"
)

// Runner executes one transcription request. *transcribe.Pipeline satisfies
// it; tests substitute lighter implementations.
type Runner interface {
	Run(ctx context.Context, req transcribe.Request) (transcribe.Summary, error)
}

// Failure records one file that did not produce a transcript.
type Failure struct {
	InputPath string
	Err       error
}

// Report aggregates the outcome of a driver run.
type Report struct {
	Processed    int
	Failures     []Failure
	AudioSeconds float64
	Words        int
	Cues         int
	Elapsed      time.Duration
}

// Driver fans transcription pairs out over a fixed-size worker pool.
type Driver struct {
	runner   Runner
	workers  int
	logger   *slog.Logger
	notifier notifications.Service
}

// Option customizes a Driver.
type Option func(*Driver)

// WithWorkers sets the worker pool size. Values below one are clamped.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger attaches a logger to the driver.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithNotifier enables completion notifications.
func WithNotifier(notifier notifications.Service) Option {
	return func(d *Driver) {
		d.notifier = notifier
	}
}

// NewDriver builds a Driver around the provided runner.
func NewDriver(runner Runner, opts ...Option) *Driver {
	d := &Driver{
		runner:  runner,
		workers: runtime.NumCPU(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// Run transcribes every pair, filling the template request with each pair's
// paths. Files fail independently; the returned error is nil only when all
// files succeeded, and otherwise names the ones that did not.
func (d *Driver) Run(ctx context.Context, pairs []Pair, template transcribe.Request) (Report, error) {
	start := time.Now()
	report := Report{}
	if len(pairs) == 0 {
		return report, services.Wrap(services.ErrPath, "batch", "run", "nothing to transcribe", nil)
	}

	workers := d.workers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	work := make(chan Pair)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for pair := range work {
				req := template
				req.InputPath = pair.InputPath
				req.OutputPath = pair.OutputPath
				summary, err := d.runner.Run(ctx, req)

				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, Failure{InputPath: pair.InputPath, Err: err})
				} else {
					report.Processed++
					report.AudioSeconds += summary.AudioSeconds
					report.Words += summary.Words
					report.Cues += summary.Cues
				}
				mu.Unlock()

				if err != nil {
					d.logger.Error("file failed",
						logging.Args(
							logging.String("input", pair.InputPath),
							logging.Error(err),
						)...)
				}
			}
		}()
	}

feed:
	for _, pair := range pairs {
		select {
		case work <- pair:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	report.Elapsed = time.Since(start)
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].InputPath < report.Failures[j].InputPath
	})

	var runErr error
	if len(report.Failures) > 0 {
		names := make([]string, len(report.Failures))
		for i, failure := range report.Failures {
			names[i] = filepath.Base(failure.InputPath)
		}
		runErr = fmt.Errorf("%d of %d files failed: %s", len(report.Failures), len(pairs), strings.Join(names, ", "))
	}

	if ctx.Err() == nil {
		d.logger.Info("batch complete",
			logging.Args(
				logging.Int("processed", report.Processed),
				logging.Int("failed", len(report.Failures)),
				logging.Float64("audio_seconds", report.AudioSeconds),
				logging.Duration("elapsed", report.Elapsed),
			)...)
		d.notify(ctx, pairs, report, runErr)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, runErr
}

// notify pushes a completion event. Delivery failures are logged, never
// returned.
func (d *Driver) notify(ctx context.Context, pairs []Pair, report Report, runErr error) {
	if d.notifier == nil {
		return
	}
	var err error
	switch {
	case runErr != nil && report.Processed == 0:
		err = d.notifier.NotifyError(ctx, runErr, "batch")
	case len(pairs) == 1 && runErr == nil:
		pair := pairs[0]
		err = d.notifier.NotifyRunCompleted(ctx, filepath.Base(pair.InputPath), pair.OutputPath, report.AudioSeconds)
	default:
		err = d.notifier.NotifyBatchCompleted(ctx, report.Processed, len(report.Failures), report.Elapsed)
	}
	if err != nil {
		d.logger.Warn("notification failed", logging.Error(err))
	}
}
