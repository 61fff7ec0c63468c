package preflight

import (
	"context"
	"fmt"

	"scribe/internal/config"
	"scribe/internal/services"
)

// Kind classifies a check so failures can be mapped to the right error.
type Kind int

const (
	// KindPath marks filesystem access checks.
	KindPath Kind = iota
	// KindTool marks external binary checks.
	KindTool
	// KindServer marks recognizer server connectivity checks.
	KindServer
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Kind   Kind
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := baseChecks(cfg)
	if cfg.Recognizer.Mode == config.RecognizerModeServer {
		results = append(results, CheckRecognizerServer(ctx, cfg.Recognizer.ServerURL))
	}
	return results
}

// Gate runs the hard-stop checks before a transcription run. Path failures
// return a path error, missing tools a configuration error. Recognizer
// server connectivity is intentionally excluded: in server mode the session
// dial reports unavailability with better detail.
func Gate(cfg *config.Config) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "check environment", "missing configuration", nil)
	}
	for _, result := range baseChecks(cfg) {
		if result.Passed {
			continue
		}
		detail := fmt.Sprintf("%s: %s", result.Name, result.Detail)
		switch result.Kind {
		case KindTool:
			return services.Wrap(services.ErrConfiguration, "preflight", "check environment", detail, nil)
		default:
			return services.Wrap(services.ErrPath, "preflight", "check environment", detail, nil)
		}
	}
	return nil
}

// baseChecks covers filesystem paths and external tools. Directories are
// expected to exist already; config.EnsureDirectories runs first.
func baseChecks(cfg *config.Config) []Result {
	var results []Result

	results = append(results, CheckDirectoryAccess("Model cache directory", cfg.Paths.ModelCacheDir))
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range CheckTools(cfg) {
		result := Result{Name: status.Name, Kind: KindTool, Passed: status.Available, Detail: status.Detail}
		if result.Passed {
			result.Detail = status.Command
		}
		results = append(results, result)
	}
	return results
}
