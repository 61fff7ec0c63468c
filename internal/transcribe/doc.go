// Package transcribe orchestrates one transcription run end to end: probe
// the input, decode it to PCM, stream it through a recognizer session,
// render the requested output format, and write the result atomically.
//
// A Pipeline holds run-scoped collaborators and no package-level state, so
// independent runs may execute concurrently. Each Run owns its decode stream
// and recognizer session exclusively and releases both on every exit path.
// Run history recording is best effort; a store failure never fails the run
// that triggered it.
package transcribe
