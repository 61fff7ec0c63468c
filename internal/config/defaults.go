package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLogDir               = "~/.local/share/scribe/logs"
	defaultDatabasePath         = "~/.local/share/scribe/scribe.db"
	defaultFormat               = "txt"
	defaultModelName            = "vosk-model-small-en-us-0.15"
	defaultRecognizerMode       = RecognizerModeLocal
	defaultServerURL            = "ws://127.0.0.1:2700"
	defaultCatalogURL           = "https://alphacephei.com/vosk/models/model-list.json"
	defaultCatalogMaxAgeHours   = 24
	defaultDownloadTimeout      = 600
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "auto"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelCacheDir: defaultModelCacheDir(),
			LogDir:        defaultLogDir,
			DatabasePath:  defaultDatabasePath,
		},
		Transcription: Transcription{
			Format:    defaultFormat,
			ModelName: defaultModelName,
		},
		Recognizer: Recognizer{
			Mode:      defaultRecognizerMode,
			ServerURL: defaultServerURL,
		},
		Models: Models{
			CatalogURL:      defaultCatalogURL,
			CatalogMaxAge:   defaultCatalogMaxAgeHours,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultModelCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "scribe", "models")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/scribe/models"
	}
	return filepath.Join(home, ".cache", "scribe", "models")
}
