// Package recognizer defines the engine boundary for streaming speech
// recognition and the chunked feed loop that accumulates completions.
package recognizer

import "context"

// ChunkSize is the fixed number of PCM bytes fed to a session per read.
const ChunkSize = 4000

// SampleRate is the PCM sample rate every engine consumes.
const SampleRate = 16000

// BytesPerSecond converts PCM byte counts to audio seconds for 16-bit mono
// samples at SampleRate.
const BytesPerSecond = SampleRate * 2

// Engine produces recognition sessions for one loaded model. Engines may be
// shared across concurrent runs; sessions may not.
type Engine interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is one streaming decode context. Chunks must arrive in order; a
// session serves exactly one audio stream and is closed when its run ends.
type Session interface {
	// AcceptWaveform feeds one PCM chunk. When the engine finalizes a phrase
	// it returns true with the completion payload; otherwise false and the
	// chunk is considered still in flight.
	AcceptWaveform(chunk []byte) (bool, []byte, error)
	// FinalResult flushes whatever audio remains into one last completion.
	// It is called exactly once, after the stream is exhausted.
	FinalResult() ([]byte, error)
	Close() error
}
