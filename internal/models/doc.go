// Package models resolves the recognizer model directory for a run.
//
// Models come from the upstream Vosk catalog, a JSON list describing every
// published model with its language, size, checksum, and download URL. The
// Catalog type mirrors that list into the local cache directory and answers
// name and language queries against it; the Resolver turns a model selection
// (explicit path, model name, or language) into an installed model directory,
// downloading and unpacking archives on first use.
//
// Installation is safe across concurrent scribe processes: a per-model file
// lock serializes downloads and the final directory appears atomically via
// rename.
package models
