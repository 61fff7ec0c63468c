// Package ffmpeg decodes media files into the raw PCM stream the recognizer
// consumes.
//
// A Decoder launches one ffmpeg process per input and exposes its stdout as
// an io.Reader producing mono 16 kHz signed 16-bit little-endian samples.
// Decode failures surface when the stream is closed: ffmpeg reports bad or
// audioless input on stderr and through its exit status, both of which are
// folded into the unsupported-media error.
package ffmpeg
