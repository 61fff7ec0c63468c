package transcribe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/jobs"
	"scribe/internal/media/ffprobe"
	"scribe/internal/recognizer"
	"scribe/internal/services"
	"scribe/internal/services/ffmpeg"
	"scribe/internal/testsupport"
	"scribe/internal/transcribe"
)

const helloPayload = `{"text": "hello world", "result": [
	{"word": "hello", "start": 0.0, "end": 0.42, "conf": 0.99},
	{"word": "world", "start": 0.54, "end": 0.96, "conf": 0.98}
]}`

const againPayload = `{"text": "again", "result": [
	{"word": "again", "start": 1.2, "end": 1.5, "conf": 0.97}
]}`

const emptyPayload = `{"text": ""}`

type fakeSession struct {
	completions map[int][]byte
	final       []byte
	chunks      int
	closed      bool
}

func (s *fakeSession) AcceptWaveform(chunk []byte) (bool, []byte, error) {
	idx := s.chunks
	s.chunks++
	if payload, ok := s.completions[idx]; ok {
		return true, payload, nil
	}
	return false, nil, nil
}

func (s *fakeSession) FinalResult() ([]byte, error) {
	if s.final == nil {
		return []byte(emptyPayload), nil
	}
	return s.final, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeEngine struct {
	session    *fakeSession
	sessionErr error
}

func (e *fakeEngine) NewSession(ctx context.Context) (recognizer.Session, error) {
	if e.sessionErr != nil {
		return nil, e.sessionErr
	}
	return e.session, nil
}

func (e *fakeEngine) Close() error { return nil }

type fakeProcess struct {
	stdout  io.Reader
	waitErr error
	stderr  string
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }
func (p *fakeProcess) Wait() error       { return p.waitErr }
func (p *fakeProcess) Stderr() string    { return p.stderr }

type fakeLauncher struct {
	process  ffmpeg.Process
	err      error
	launched bool
}

func (l *fakeLauncher) Launch(ctx context.Context, binary string, args []string) (ffmpeg.Process, error) {
	l.launched = true
	if l.err != nil {
		return nil, l.err
	}
	return l.process, nil
}

func audioProbe() transcribe.ProbeFunc {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{
			Index:      0,
			CodecName:  "aac",
			CodecType:  "audio",
			Duration:   "2.5",
			SampleRate: "44100",
			Channels:   2,
		}},
		Format: ffprobe.Format{NBStreams: 1, Duration: "2.5", Size: "40000"},
	}
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return result, nil
	}
}

func newPipeline(t *testing.T, session *fakeSession, launcher *fakeLauncher, opts ...transcribe.Option) *transcribe.Pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := []transcribe.Option{
		transcribe.WithDecoder(ffmpeg.NewDecoder("ffmpeg", ffmpeg.WithLauncher(launcher))),
		transcribe.WithProbe(audioProbe()),
	}
	return transcribe.New(cfg, &fakeEngine{session: session}, append(base, opts...)...)
}

func TestRunWritesPlainTextTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	inputPath := filepath.Join(t.TempDir(), "lecture.mp4")
	testsupport.WriteFile(t, inputPath, 64)
	outputPath := filepath.Join(t.TempDir(), "out", "lecture.txt")

	session := &fakeSession{
		completions: map[int][]byte{0: []byte(helloPayload)},
		final:       []byte(againPayload),
	}
	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(make([]byte, 8000))}}
	pipeline := transcribe.New(cfg, &fakeEngine{session: session},
		transcribe.WithDecoder(ffmpeg.NewDecoder("ffmpeg", ffmpeg.WithLauncher(launcher))),
		transcribe.WithProbe(audioProbe()),
		transcribe.WithStore(store),
	)

	summary, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     transcribe.FormatText,
		ModelName:  "vosk-model-small-en-us-0.15",
		Language:   "en-us",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(content) != "hello world again " {
		t.Fatalf("unexpected transcript: %q", string(content))
	}

	if summary.Results != 2 {
		t.Fatalf("expected 2 results, got %d", summary.Results)
	}
	if summary.Words != 3 {
		t.Fatalf("expected 3 words, got %d", summary.Words)
	}
	if summary.ConsumedBytes != 4000 {
		t.Fatalf("expected 4000 settled bytes, got %d", summary.ConsumedBytes)
	}
	if summary.AudioSeconds != 0.125 {
		t.Fatalf("expected 0.125 audio seconds, got %v", summary.AudioSeconds)
	}
	if !session.closed {
		t.Fatal("expected session to be closed")
	}

	recorded, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recorded) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorded))
	}
	job := recorded[0]
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed run, got %s", job.Status)
	}
	if job.WordCount != 3 {
		t.Fatalf("expected 3 recorded words, got %d", job.WordCount)
	}
	if job.AudioSeconds != 0.125 {
		t.Fatalf("expected 0.125 recorded audio seconds, got %v", job.AudioSeconds)
	}
}

func TestRunComposesSubtitles(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "talk.mkv")
	testsupport.WriteFile(t, inputPath, 64)
	outputPath := filepath.Join(t.TempDir(), "talk.srt")

	session := &fakeSession{
		completions: map[int][]byte{0: []byte(helloPayload)},
		final:       []byte(againPayload),
	}
	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(make([]byte, 4000))}}
	pipeline := newPipeline(t, session, launcher)

	summary, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     transcribe.FormatSRT,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:00,960\nhello world\n\n" +
		"2\n00:00:01,200 --> 00:00:01,500\nagain\n\n"
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(content) != want {
		t.Fatalf("unexpected document:\n%q\nwant:\n%q", string(content), want)
	}
	if summary.Cues != 2 {
		t.Fatalf("expected 2 cues, got %d", summary.Cues)
	}
}

func TestRunStreamsToStdoutWithoutOutputPath(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "note.wav")
	testsupport.WriteFile(t, inputPath, 64)

	session := &fakeSession{
		completions: map[int][]byte{0: []byte(helloPayload)},
	}
	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(make([]byte, 4000))}}
	var stdout bytes.Buffer
	pipeline := newPipeline(t, session, launcher, transcribe.WithStdout(&stdout))

	if _, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath: inputPath,
		Format:    transcribe.FormatText,
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stdout.String() != "hello world " {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
}

func TestRunFlushesEmptyStream(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "silence.wav")
	testsupport.WriteFile(t, inputPath, 64)
	outputPath := filepath.Join(t.TempDir(), "silence.txt")

	session := &fakeSession{}
	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(nil)}}
	pipeline := newPipeline(t, session, launcher)

	summary, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     transcribe.FormatText,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Results != 1 {
		t.Fatalf("expected the forced flush result, got %d", summary.Results)
	}
	if summary.ConsumedBytes != 0 || summary.AudioSeconds != 0 {
		t.Fatalf("expected no settled audio, got %#v", summary)
	}
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(content) != 0 {
		t.Fatalf("expected empty transcript, got %q", string(content))
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	session := &fakeSession{}
	launcher := &fakeLauncher{}
	pipeline := transcribe.New(cfg, &fakeEngine{session: session},
		transcribe.WithDecoder(ffmpeg.NewDecoder("ffmpeg", ffmpeg.WithLauncher(launcher))),
		transcribe.WithProbe(audioProbe()),
		transcribe.WithStore(store),
	)

	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath: filepath.Join(t.TempDir(), "missing.wav"),
		Format:    transcribe.FormatText,
	})
	if !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error, got %v", err)
	}
	if launcher.launched {
		t.Fatal("expected decoder to stay unlaunched")
	}

	recorded, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recorded) != 0 {
		t.Fatalf("expected no recorded runs, got %d", len(recorded))
	}
}

func TestRunRejectsInputWithoutAudio(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "slides.mp4")
	testsupport.WriteFile(t, inputPath, 64)

	session := &fakeSession{}
	launcher := &fakeLauncher{}
	silent := func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264"}},
			Format:  ffprobe.Format{NBStreams: 1},
		}, nil
	}
	pipeline := newPipeline(t, session, launcher, transcribe.WithProbe(silent))

	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath: inputPath,
		Format:    transcribe.FormatText,
	})
	if !errors.Is(err, services.ErrUnsupportedMedia) {
		t.Fatalf("expected unsupported media error, got %v", err)
	}
	if launcher.launched {
		t.Fatal("expected decoder to stay unlaunched")
	}
}

func TestRunFailsWhenDecodeProcessFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	inputPath := filepath.Join(t.TempDir(), "corrupt.mkv")
	testsupport.WriteFile(t, inputPath, 64)
	outputPath := filepath.Join(t.TempDir(), "corrupt.txt")

	session := &fakeSession{completions: map[int][]byte{0: []byte(helloPayload)}}
	launcher := &fakeLauncher{process: &fakeProcess{
		stdout:  bytes.NewReader(make([]byte, 4000)),
		waitErr: errors.New("exit status 1"),
		stderr:  "Invalid data found when processing input",
	}}
	pipeline := transcribe.New(cfg, &fakeEngine{session: session},
		transcribe.WithDecoder(ffmpeg.NewDecoder("ffmpeg", ffmpeg.WithLauncher(launcher))),
		transcribe.WithProbe(audioProbe()),
		transcribe.WithStore(store),
	)

	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     transcribe.FormatText,
	})
	if !errors.Is(err, services.ErrUnsupportedMedia) {
		t.Fatalf("expected unsupported media error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected decoder stderr in error, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat returned %v", statErr)
	}
	if !session.closed {
		t.Fatal("expected session to be closed")
	}

	recorded, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recorded) != 1 || recorded[0].Status != jobs.StatusFailed {
		t.Fatalf("expected one failed run, got %#v", recorded)
	}
	if recorded[0].ErrorKind != "unsupported_media" {
		t.Fatalf("expected unsupported_media kind, got %q", recorded[0].ErrorKind)
	}
}

func TestRunFailsOnMalformedCompletion(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "talk.wav")
	testsupport.WriteFile(t, inputPath, 64)
	outputPath := filepath.Join(t.TempDir(), "talk.txt")

	session := &fakeSession{completions: map[int][]byte{0: []byte("{not json")}}
	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(make([]byte, 4000))}}
	pipeline := newPipeline(t, session, launcher)

	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     transcribe.FormatText,
	})
	if !errors.Is(err, services.ErrMalformedRecognizerOutput) {
		t.Fatalf("expected malformed output error, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat returned %v", statErr)
	}
	if !session.closed {
		t.Fatal("expected session to be closed")
	}
}

func TestRunSurfacesSessionFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	inputPath := filepath.Join(t.TempDir(), "talk.wav")
	testsupport.WriteFile(t, inputPath, 64)

	launcher := &fakeLauncher{process: &fakeProcess{stdout: bytes.NewReader(make([]byte, 4000))}}
	engine := &fakeEngine{sessionErr: services.Wrap(services.ErrModelUnavailable, "vosk", "load model", "/models/en", nil)}
	pipeline := transcribe.New(cfg, engine,
		transcribe.WithDecoder(ffmpeg.NewDecoder("ffmpeg", ffmpeg.WithLauncher(launcher))),
		transcribe.WithProbe(audioProbe()),
		transcribe.WithStore(store),
	)

	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath: inputPath,
		Format:    transcribe.FormatText,
	})
	if !errors.Is(err, services.ErrModelUnavailable) {
		t.Fatalf("expected model unavailable error, got %v", err)
	}

	recorded, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recorded) != 1 || recorded[0].ErrorKind != "model_unavailable" {
		t.Fatalf("expected one model_unavailable run, got %#v", recorded)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "talk.wav")
	testsupport.WriteFile(t, inputPath, 64)

	pipeline := newPipeline(t, &fakeSession{}, &fakeLauncher{})
	_, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath: inputPath,
		Format:    "vtt",
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
