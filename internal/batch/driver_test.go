package batch_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scribe/internal/batch"
	"scribe/internal/services"
	"scribe/internal/transcribe"
)

type stubRunner struct {
	mu     sync.Mutex
	inputs []string
	failOn string
}

func (r *stubRunner) Run(ctx context.Context, req transcribe.Request) (transcribe.Summary, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, req.InputPath)
	r.mu.Unlock()

	if r.failOn != "" && strings.Contains(req.InputPath, r.failOn) {
		return transcribe.Summary{}, services.Wrap(services.ErrUnsupportedMedia, "transcribe", "probe input", req.InputPath, nil)
	}
	return transcribe.Summary{
		InputPath:    req.InputPath,
		OutputPath:   req.OutputPath,
		AudioSeconds: 2.5,
		Words:        10,
		Cues:         2,
	}, nil
}

func (r *stubRunner) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

type recordingNotifier struct {
	mu        sync.Mutex
	runs      []string
	batches   []string
	errors    []string
	testCalls int
}

func (n *recordingNotifier) NotifyRunCompleted(ctx context.Context, inputName, outputPath string, audioSeconds float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, fmt.Sprintf("%s->%s", inputName, outputPath))
	return nil
}

func (n *recordingNotifier) NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, fmt.Sprintf("%d/%d", processed, failed))
	return nil
}

func (n *recordingNotifier) NotifyError(ctx context.Context, err error, contextLabel string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, contextLabel)
	return nil
}

func (n *recordingNotifier) TestNotification(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.testCalls++
	return nil
}

func makePairs(dir string, names ...string) []batch.Pair {
	pairs := make([]batch.Pair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, batch.Pair{
			InputPath:  filepath.Join(dir, name),
			OutputPath: filepath.Join(dir, "out", name+".txt"),
		})
	}
	return pairs
}

func TestDriverRunsAllFiles(t *testing.T) {
	runner := &stubRunner{}
	notifier := &recordingNotifier{}
	driver := batch.NewDriver(runner, batch.WithWorkers(2), batch.WithNotifier(notifier))

	pairs := makePairs(t.TempDir(), "a.wav", "b.wav", "c.wav")
	report, err := driver.Run(context.Background(), pairs, transcribe.Request{Format: transcribe.FormatText})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Processed != 3 || len(report.Failures) != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if report.AudioSeconds != 7.5 || report.Words != 30 {
		t.Fatalf("unexpected aggregates: %#v", report)
	}
	if got := len(runner.seen()); got != 3 {
		t.Fatalf("expected 3 runs, got %d", got)
	}
	if len(notifier.batches) != 1 || notifier.batches[0] != "3/0" {
		t.Fatalf("expected one batch notification, got %#v", notifier.batches)
	}
}

func TestDriverIsolatesFailures(t *testing.T) {
	runner := &stubRunner{failOn: "bad"}
	notifier := &recordingNotifier{}
	driver := batch.NewDriver(runner, batch.WithWorkers(2), batch.WithNotifier(notifier))

	pairs := makePairs(t.TempDir(), "a.wav", "bad.wav", "c.wav")
	report, err := driver.Run(context.Background(), pairs, transcribe.Request{Format: transcribe.FormatText})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "1 of 3 files failed") || !strings.Contains(err.Error(), "bad.wav") {
		t.Fatalf("unexpected aggregate error: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", report.Processed)
	}
	if len(report.Failures) != 1 || !errors.Is(report.Failures[0].Err, services.ErrUnsupportedMedia) {
		t.Fatalf("unexpected failures: %#v", report.Failures)
	}
	if len(notifier.batches) != 1 || notifier.batches[0] != "2/1" {
		t.Fatalf("expected batch notification with failures, got %#v", notifier.batches)
	}
}

func TestDriverSingleSuccessNotifiesRun(t *testing.T) {
	runner := &stubRunner{}
	notifier := &recordingNotifier{}
	driver := batch.NewDriver(runner, batch.WithNotifier(notifier))

	dir := t.TempDir()
	pairs := makePairs(dir, "talk.wav")
	if _, err := driver.Run(context.Background(), pairs, transcribe.Request{Format: transcribe.FormatText}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(notifier.runs) != 1 {
		t.Fatalf("expected one run notification, got %#v", notifier.runs)
	}
	want := "talk.wav->" + filepath.Join(dir, "out", "talk.wav.txt")
	if notifier.runs[0] != want {
		t.Fatalf("expected %q, got %q", want, notifier.runs[0])
	}
	if len(notifier.batches) != 0 {
		t.Fatalf("expected no batch notification, got %#v", notifier.batches)
	}
}

func TestDriverNotifiesErrorWhenNothingSucceeds(t *testing.T) {
	runner := &stubRunner{failOn: ".wav"}
	notifier := &recordingNotifier{}
	driver := batch.NewDriver(runner, batch.WithNotifier(notifier))

	pairs := makePairs(t.TempDir(), "a.wav", "b.wav")
	_, err := driver.Run(context.Background(), pairs, transcribe.Request{Format: transcribe.FormatText})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != "batch" {
		t.Fatalf("expected one error notification, got %#v", notifier.errors)
	}
	if len(notifier.batches) != 0 {
		t.Fatalf("expected no batch notification, got %#v", notifier.batches)
	}
}

func TestDriverRejectsEmptyPairList(t *testing.T) {
	driver := batch.NewDriver(&stubRunner{})
	_, err := driver.Run(context.Background(), nil, transcribe.Request{Format: transcribe.FormatText})
	if !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}

func TestDriverStopsFeedingOnCancel(t *testing.T) {
	runner := &stubRunner{}
	notifier := &recordingNotifier{}
	driver := batch.NewDriver(runner, batch.WithWorkers(1), batch.WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs := makePairs(t.TempDir(), "a.wav", "b.wav", "c.wav")
	_, err := driver.Run(ctx, pairs, transcribe.Request{Format: transcribe.FormatText})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(notifier.runs)+len(notifier.batches)+len(notifier.errors) != 0 {
		t.Fatalf("expected no notifications after cancel, got %#v", notifier)
	}
}
