package testsupport

import (
	"context"
	"testing"

	"scribe/internal/config"
	"scribe/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob records a pending run for tests using the provided store.
func NewJob(t testing.TB, store *jobs.Store, inputPath string) *jobs.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), jobs.StartParams{
		InputPath:  inputPath,
		OutputPath: inputPath + ".txt",
		Format:     "txt",
		ModelName:  "vosk-model-small-en-us-0.15",
		Language:   "en-us",
	})
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
