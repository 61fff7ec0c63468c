package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/fileutil"
	"scribe/internal/services"
	"scribe/internal/textutil"
)

// Pair couples one input file with its resolved output destination. An empty
// OutputPath streams the transcript to stdout.
type Pair struct {
	InputPath  string
	OutputPath string
}

// Expand resolves the requested input into transcription pairs. A regular
// file yields exactly one pair; a directory yields one pair per regular,
// non-hidden file directly inside it, sorted by name, with outputs derived
// from the sanitized input stems under the output directory.
func Expand(inputPath, outputPath, format string) ([]Pair, error) {
	inputPath = strings.TrimSpace(inputPath)
	if inputPath == "" {
		return nil, services.Wrap(services.ErrPath, "batch", "expand input", "input path required", nil)
	}
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPath, "batch", "expand input", inputPath, err)
	}

	if !info.IsDir() {
		output, err := resolveFileOutput(inputPath, outputPath, format)
		if err != nil {
			return nil, err
		}
		return []Pair{{InputPath: inputPath, OutputPath: output}}, nil
	}

	outDir := strings.TrimSpace(outputPath)
	if outDir == "" {
		return nil, services.Wrap(services.ErrPath, "batch", "expand output", "output directory required for directory input", nil)
	}
	if outInfo, statErr := os.Stat(outDir); statErr == nil {
		if !outInfo.IsDir() {
			return nil, services.Wrap(services.ErrPath, "batch", "expand output", outDir+" is not a directory", nil)
		}
	} else if err := fileutil.EnsureDir(outDir); err != nil {
		return nil, services.Wrap(services.ErrPath, "batch", "expand output", outDir, err)
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPath, "batch", "expand input", inputPath, err)
	}

	var pairs []Pair
	seen := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		output := filepath.Join(outDir, textutil.Stem(name)+"."+format)
		if prev, clash := seen[output]; clash {
			return nil, services.Wrap(services.ErrPath, "batch", "expand input",
				fmt.Sprintf("%s and %s both produce %s", prev, name, output), nil)
		}
		seen[output] = name
		pairs = append(pairs, Pair{
			InputPath:  filepath.Join(inputPath, name),
			OutputPath: output,
		})
	}
	if len(pairs) == 0 {
		return nil, services.Wrap(services.ErrPath, "batch", "expand input", inputPath+" contains no files to transcribe", nil)
	}
	return pairs, nil
}

// resolveFileOutput maps a single-file request onto its destination: empty
// stays empty (stdout), an existing directory receives a derived file name,
// anything else is taken as the literal output path.
func resolveFileOutput(inputPath, outputPath, format string) (string, error) {
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return "", nil
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		return filepath.Join(outputPath, textutil.Stem(inputPath)+"."+format), nil
	}
	return outputPath, nil
}
