// Package jobs persists transcription run history in SQLite.
//
// The Store records one row per transcription: input and output paths, the
// model and language used, timing and throughput metrics, and the failure
// classification when a run errors. The CLI surfaces this through
// "scribe history". History writes are best-effort; transcription itself
// never fails because the database is unavailable.
//
// Treat this package as the single source of truth for history semantics;
// when you add fields, update schema.sql and bump schemaVersion.
package jobs
