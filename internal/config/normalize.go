package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeRecognizer()
	c.normalizeModels()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ModelCacheDir) == "" {
		c.Paths.ModelCacheDir = defaultModelCacheDir()
	}
	if c.Paths.ModelCacheDir, err = expandPath(c.Paths.ModelCacheDir); err != nil {
		return fmt.Errorf("paths.model_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	} else {
		c.Paths.OutputDir = ""
	}
	return nil
}

// normalizeTranscription applies the VOSK_MODEL_PATH fallback the upstream
// model loader honors, then expands any explicit model directory.
func (c *Config) normalizeTranscription() error {
	c.Transcription.Format = strings.ToLower(strings.TrimSpace(c.Transcription.Format))
	if c.Transcription.Format == "" {
		c.Transcription.Format = defaultFormat
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	c.Transcription.ModelName = strings.TrimSpace(c.Transcription.ModelName)
	if c.Transcription.ModelName == "" {
		c.Transcription.ModelName = defaultModelName
	}
	c.Transcription.ModelPath = strings.TrimSpace(c.Transcription.ModelPath)
	if c.Transcription.ModelPath == "" {
		if value, ok := os.LookupEnv("VOSK_MODEL_PATH"); ok && strings.TrimSpace(value) != "" {
			c.Transcription.ModelPath = strings.TrimSpace(value)
		}
	}
	if c.Transcription.ModelPath != "" {
		expanded, err := expandPath(c.Transcription.ModelPath)
		if err != nil {
			return fmt.Errorf("transcription.model_path: %w", err)
		}
		c.Transcription.ModelPath = expanded
	}
	return nil
}

func (c *Config) normalizeRecognizer() {
	c.Recognizer.Mode = strings.ToLower(strings.TrimSpace(c.Recognizer.Mode))
	if c.Recognizer.Mode == "" {
		c.Recognizer.Mode = defaultRecognizerMode
	}
	c.Recognizer.ServerURL = strings.TrimSpace(c.Recognizer.ServerURL)
	if c.Recognizer.ServerURL == "" {
		c.Recognizer.ServerURL = defaultServerURL
	}
}

func (c *Config) normalizeModels() {
	c.Models.CatalogURL = strings.TrimSpace(c.Models.CatalogURL)
	if c.Models.CatalogURL == "" {
		c.Models.CatalogURL = defaultCatalogURL
	}
	if c.Models.CatalogMaxAge <= 0 {
		c.Models.CatalogMaxAge = defaultCatalogMaxAgeHours
	}
	if c.Models.DownloadTimeout <= 0 {
		c.Models.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
