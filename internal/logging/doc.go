// Package logging assembles the structured slog loggers used across scribe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and keeps log traffic on stderr so transcripts can stream to
// stdout untouched. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits lines with the same shape.
package logging
