// Package preflight provides readiness checks for the external tools and
// filesystem paths that Scribe depends on.
//
// These checks run in two contexts:
//   - The transcription pipeline calls Gate before processing input.
//     If any check fails, the run stops before audio is decoded.
//   - The CLI "scribe config show" command uses RunAll to display
//     tool and path health.
//
// Checks that depend on optional configuration (recognizer server mode,
// log directory) are skipped when the feature is not enabled.
package preflight
