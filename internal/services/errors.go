package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelUnavailable marks a language or model that cannot be resolved,
	// fetched, or unpacked.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrUnsupportedMedia marks an input the decode process cannot interpret.
	ErrUnsupportedMedia = errors.New("unsupported media")
	// ErrMalformedRecognizerOutput marks a completion that cannot be parsed,
	// indicating an incompatible recognizer version.
	ErrMalformedRecognizerOutput = errors.New("malformed recognizer output")
	// ErrPath marks a missing or invalid input or output path.
	ErrPath = errors.New("path error")
	// ErrExternalTool marks a required external binary failing or missing.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a wrapped error to a stable label for logs and run history.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrUnsupportedMedia):
		return "unsupported_media"
	case errors.Is(err, ErrMalformedRecognizerOutput):
		return "malformed_recognizer_output"
	case errors.Is(err, ErrPath):
		return "path_error"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrExternalTool):
		return "external_tool_error"
	default:
		return "failure"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
