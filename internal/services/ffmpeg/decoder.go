package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"scribe/internal/recognizer"
	"scribe/internal/services"
)

// stderrTailLimit bounds how much ffmpeg stderr is retained for error detail.
const stderrTailLimit = 4096

// Launcher abstracts process startup for testability.
type Launcher interface {
	Launch(ctx context.Context, binary string, args []string) (Process, error)
}

// Process is a started decode process.
type Process interface {
	Stdout() io.Reader
	Wait() error
	Stderr() string
}

// Decoder launches ffmpeg processes that downmix media files to the PCM
// format the recognizer expects.
type Decoder struct {
	binary   string
	launcher Launcher
}

// Option customizes Decoder construction.
type Option func(*Decoder)

// WithLauncher injects a custom process launcher (primarily for tests).
func WithLauncher(l Launcher) Option {
	return func(d *Decoder) {
		if l != nil {
			d.launcher = l
		}
	}
}

// NewDecoder builds a Decoder that runs the given ffmpeg binary.
func NewDecoder(binary string, opts ...Option) *Decoder {
	d := &Decoder{
		binary:   strings.TrimSpace(binary),
		launcher: execLauncher{},
	}
	if d.binary == "" {
		d.binary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func decodeArgs(path string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(recognizer.SampleRate),
		"-c:a", "pcm_s16le",
		"-f", "s16le",
		"-",
	}
}

// Open starts decoding path. The returned Stream yields PCM samples until
// ffmpeg exhausts the input; Close must be called to reap the process and
// learn whether decoding actually succeeded.
func (d *Decoder) Open(ctx context.Context, path string) (*Stream, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrPath, "ffmpeg", "decode audio", "empty input path", nil)
	}

	proc, err := d.launcher.Launch(ctx, d.binary, decodeArgs(path))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "start decoder", fmt.Sprintf("binary %q", d.binary), err)
	}
	return &Stream{ctx: ctx, proc: proc, path: path}, nil
}

// Stream is a live decode in progress. Reads return raw PCM from ffmpeg's
// stdout. Close reaps the process exactly once.
type Stream struct {
	ctx      context.Context
	proc     Process
	path     string
	closed   bool
	closeErr error
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.proc.Stdout().Read(p)
}

// Close drains any unread output, waits for ffmpeg to exit, and reports
// decode failure as an unsupported-media error carrying the stderr tail.
// Subsequent calls return the first result.
func (s *Stream) Close() error {
	if s.closed {
		return s.closeErr
	}
	s.closed = true

	// Keep the pipe moving so ffmpeg can exit even when the caller bailed
	// out mid-stream. Cancelling the context kills the process and unblocks
	// this immediately.
	_, _ = io.Copy(io.Discard, s.proc.Stdout())

	err := s.proc.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.closeErr = ctxErr
		return s.closeErr
	}

	detail := s.path
	if tail := strings.TrimSpace(s.proc.Stderr()); tail != "" {
		detail = fmt.Sprintf("%s: %s", s.path, tail)
	}
	s.closeErr = services.Wrap(services.ErrUnsupportedMedia, "ffmpeg", "decode audio", detail, err)
	return s.closeErr
}

type execLauncher struct{}

func (execLauncher) Launch(ctx context.Context, binary string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	tail := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = tail
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &execProcess{cmd: cmd, stdout: stdout, tail: tail}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	tail   *tailBuffer
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Wait() error       { return p.cmd.Wait() }
func (p *execProcess) Stderr() string    { return p.tail.String() }

// tailBuffer retains the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
