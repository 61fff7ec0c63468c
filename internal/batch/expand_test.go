package batch_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/batch"
	"scribe/internal/services"
	"scribe/internal/testsupport"
)

func TestExpandSingleFileToStdout(t *testing.T) {
	input := filepath.Join(t.TempDir(), "talk.mp3")
	testsupport.WriteFile(t, input, 16)

	pairs, err := batch.Expand(input, "", "txt")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected one pair, got %d", len(pairs))
	}
	if pairs[0].InputPath != input || pairs[0].OutputPath != "" {
		t.Fatalf("unexpected pair: %#v", pairs[0])
	}
}

func TestExpandSingleFileIntoDirectory(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "My Talk (final).mp3")
	testsupport.WriteFile(t, input, 16)
	outDir := filepath.Join(base, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	pairs, err := batch.Expand(input, outDir, "srt")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := filepath.Join(outDir, "My Talk (final).srt")
	if pairs[0].OutputPath != want {
		t.Fatalf("expected output %s, got %s", want, pairs[0].OutputPath)
	}
}

func TestExpandSingleFileToExplicitPath(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "talk.mp3")
	testsupport.WriteFile(t, input, 16)
	output := filepath.Join(base, "renamed.txt")

	pairs, err := batch.Expand(input, output, "txt")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if pairs[0].OutputPath != output {
		t.Fatalf("expected output %s, got %s", output, pairs[0].OutputPath)
	}
}

func TestExpandDirectorySortsAndFilters(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "recordings")
	testsupport.WriteFile(t, filepath.Join(inputDir, "b.wav"), 16)
	testsupport.WriteFile(t, filepath.Join(inputDir, "a.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(inputDir, ".hidden.wav"), 16)
	if err := os.MkdirAll(filepath.Join(inputDir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(inputDir, "nested", "deep.wav"), 16)
	outDir := filepath.Join(base, "out")

	pairs, err := batch.Expand(inputDir, outDir, "txt")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected two pairs, got %#v", pairs)
	}
	if filepath.Base(pairs[0].InputPath) != "a.mp3" || filepath.Base(pairs[1].InputPath) != "b.wav" {
		t.Fatalf("expected sorted inputs, got %#v", pairs)
	}
	if pairs[0].OutputPath != filepath.Join(outDir, "a.txt") {
		t.Fatalf("unexpected output path: %s", pairs[0].OutputPath)
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Fatalf("expected output directory to be created: %v", err)
	}
}

func TestExpandDirectoryRequiresOutputDirectory(t *testing.T) {
	inputDir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(inputDir, "a.mp3"), 16)

	if _, err := batch.Expand(inputDir, "", "txt"); !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error for missing output, got %v", err)
	}

	occupied := filepath.Join(t.TempDir(), "file.txt")
	testsupport.WriteFile(t, occupied, 4)
	if _, err := batch.Expand(inputDir, occupied, "txt"); !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error for non-directory output, got %v", err)
	}
}

func TestExpandEmptyDirectory(t *testing.T) {
	inputDir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(inputDir, ".hidden"), 4)

	_, err := batch.Expand(inputDir, filepath.Join(t.TempDir(), "out"), "txt")
	if !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error for empty directory, got %v", err)
	}
	if !strings.Contains(err.Error(), "no files to transcribe") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestExpandRejectsOutputCollisions(t *testing.T) {
	inputDir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(inputDir, "talk.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(inputDir, "talk.wav"), 16)

	_, err := batch.Expand(inputDir, filepath.Join(t.TempDir(), "out"), "txt")
	if !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error for collision, got %v", err)
	}
	if !strings.Contains(err.Error(), "talk.mp3") || !strings.Contains(err.Error(), "talk.wav") {
		t.Fatalf("expected both inputs named, got %v", err)
	}
}

func TestExpandMissingInput(t *testing.T) {
	_, err := batch.Expand(filepath.Join(t.TempDir(), "absent"), "", "txt")
	if !errors.Is(err, services.ErrPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}
