package recognizer_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"scribe/internal/recognizer"
	"scribe/internal/services"
)

type scriptStep struct {
	completed bool
	payload   string
	err       error
}

type fakeSession struct {
	script       []scriptStep
	finalPayload string
	finalErr     error
	finalCalls   int
	fedSizes     []int
	closed       bool
}

func (s *fakeSession) AcceptWaveform(chunk []byte) (bool, []byte, error) {
	s.fedSizes = append(s.fedSizes, len(chunk))
	if len(s.script) == 0 {
		return false, nil, nil
	}
	step := s.script[0]
	s.script = s.script[1:]
	return step.completed, []byte(step.payload), step.err
}

func (s *fakeSession) FinalResult() ([]byte, error) {
	s.finalCalls++
	if s.finalErr != nil {
		return nil, s.finalErr
	}
	return []byte(s.finalPayload), nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func pcm(n int) io.Reader {
	return bytes.NewReader(make([]byte, n))
}

func TestCollectEmptyStream(t *testing.T) {
	sess := &fakeSession{finalPayload: `{"text": ""}`}

	seq, consumed, err := recognizer.Collect(pcm(0), sess)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(seq) != 1 {
		t.Fatalf("expected only the final flush, got %d results", len(seq))
	}
	if consumed != 0 {
		t.Fatalf("expected zero consumed bytes, got %d", consumed)
	}
	if sess.finalCalls != 1 {
		t.Fatalf("expected exactly one flush, got %d", sess.finalCalls)
	}
	if seq.Text() != "" {
		t.Fatalf("expected empty transcript, got %q", seq.Text())
	}
	if len(sess.fedSizes) != 0 {
		t.Fatalf("expected no chunks fed, got %v", sess.fedSizes)
	}
}

func TestCollectCountsOnlySettledChunks(t *testing.T) {
	sess := &fakeSession{
		script: []scriptStep{
			{completed: false},
			{completed: true, payload: `{"text":"first phrase"}`},
			{completed: false},
		},
		finalPayload: `{"text":"tail"}`,
	}

	seq, consumed, err := recognizer.Collect(pcm(3*recognizer.ChunkSize), sess)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("expected completion plus flush, got %d results", len(seq))
	}
	if seq[0].Text != "first phrase" || seq[len(seq)-1].Text != "tail" {
		t.Fatalf("unexpected sequence: %#v", seq)
	}
	if consumed != recognizer.ChunkSize {
		t.Fatalf("expected %d consumed bytes, got %d", recognizer.ChunkSize, consumed)
	}
	if sess.finalCalls != 1 {
		t.Fatalf("expected exactly one flush, got %d", sess.finalCalls)
	}
}

func TestCollectFeedsFixedChunksAndShortTail(t *testing.T) {
	sess := &fakeSession{finalPayload: `{"text": ""}`}

	if _, _, err := recognizer.Collect(pcm(2*recognizer.ChunkSize+100), sess); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	want := []int{recognizer.ChunkSize, recognizer.ChunkSize, 100}
	if len(sess.fedSizes) != len(want) {
		t.Fatalf("expected %v fed sizes, got %v", want, sess.fedSizes)
	}
	for i, size := range want {
		if sess.fedSizes[i] != size {
			t.Fatalf("expected %v fed sizes, got %v", want, sess.fedSizes)
		}
	}
}

func TestCollectFlushAlwaysLast(t *testing.T) {
	sess := &fakeSession{
		script: []scriptStep{
			{completed: true, payload: `{"text":"a"}`},
			{completed: true, payload: `{"text":"b"}`},
		},
		finalPayload: `{"text":"flush"}`,
	}

	seq, consumed, err := recognizer.Collect(pcm(2*recognizer.ChunkSize), sess)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if seq[len(seq)-1].Text != "flush" {
		t.Fatalf("expected flush last, got %#v", seq)
	}
	if consumed != int64(2*recognizer.ChunkSize) {
		t.Fatalf("expected all bytes counted, got %d", consumed)
	}
}

func TestCollectMalformedCompletion(t *testing.T) {
	sess := &fakeSession{
		script:       []scriptStep{{completed: true, payload: `{"text": `}},
		finalPayload: `{"text": ""}`,
	}

	_, _, err := recognizer.Collect(pcm(recognizer.ChunkSize), sess)
	if err == nil {
		t.Fatal("expected error for malformed completion")
	}
	if !errors.Is(err, services.ErrMalformedRecognizerOutput) {
		t.Fatalf("expected malformed recognizer marker, got %v", err)
	}
}

func TestCollectMalformedFinalFlush(t *testing.T) {
	sess := &fakeSession{finalPayload: `not json`}

	_, _, err := recognizer.Collect(pcm(0), sess)
	if !errors.Is(err, services.ErrMalformedRecognizerOutput) {
		t.Fatalf("expected malformed recognizer marker, got %v", err)
	}
}

func TestCollectEngineError(t *testing.T) {
	boom := errors.New("engine died")
	sess := &fakeSession{script: []scriptStep{{err: boom}}}

	_, _, err := recognizer.Collect(pcm(recognizer.ChunkSize), sess)
	if !errors.Is(err, boom) {
		t.Fatalf("expected engine error in chain, got %v", err)
	}
	if sess.finalCalls != 0 {
		t.Fatal("expected no flush after engine failure")
	}
}

type flakyReader struct {
	data []byte
	err  error
}

func (r *flakyReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	return 0, r.err
}

func TestCollectReadError(t *testing.T) {
	boom := errors.New("pipe burst")
	sess := &fakeSession{finalPayload: `{"text": ""}`}

	_, _, err := recognizer.Collect(&flakyReader{data: make([]byte, 100), err: boom}, sess)
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error in chain, got %v", err)
	}
}
