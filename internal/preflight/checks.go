package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sys/unix"

	"scribe/internal/config"
	"scribe/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	result := Result{Name: name, Kind: KindPath}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Detail = fmt.Sprintf("%s (error: does not exist)", path)
			return result
		}
		result.Detail = fmt.Sprintf("%s (error: stat: %v)", path, err)
		return result
	}
	if !info.IsDir() {
		result.Detail = fmt.Sprintf("%s (error: is not a directory)", path)
		return result
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)
		return result
	}
	result.Passed = true
	result.Detail = fmt.Sprintf("%s (read/write ok)", path)
	return result
}

// CheckTools evaluates the external binaries the pipeline shells out to.
// Both Gate and the CLI config display use this to avoid duplicating the
// requirements list.
func CheckTools(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio decoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckRecognizerServer verifies that a vosk server is accepting websocket
// connections. It uses a 5-second timeout and a single attempt.
func CheckRecognizerServer(ctx context.Context, serverURL string) Result {
	const name = "Recognizer server"
	result := Result{Name: name, Kind: KindServer}

	serverURL = strings.TrimSpace(serverURL)
	if serverURL == "" {
		result.Detail = "missing url"
		return result
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(checkCtx, serverURL, nil)
	if err != nil {
		result.Detail = fmt.Sprintf("connection failed (%v)", err)
		return result
	}
	_ = conn.Close()

	result.Passed = true
	result.Detail = "Reachable"
	return result
}
