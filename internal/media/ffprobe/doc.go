// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no scribe-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, format name)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result expose the audio-oriented views Scribe needs:
// audio stream presence, duration, and the first audio stream's properties.
package ffprobe
