// Package batch expands an input path into per-file transcription work and
// drives it through a fixed-size worker pool.
//
// Each file runs independently with its own recognizer session and decode
// stream; one failed file never aborts the rest. The driver aggregates
// per-file outcomes into a single report and pushes an optional completion
// notification.
package batch
