// Package services defines shared helpers for the external integrations the
// transcription pipeline drives.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag failures from
//     collaborators (model catalog, audio decode, recognition engine) so the
//     CLI and batch driver can classify them consistently.
//   - A Classify helper that turns any wrapped failure into a stable label
//     for logs and run history.
//
// Use these helpers when wiring new collaborators so failure handling stays
// uniform across the pipeline.
package services
