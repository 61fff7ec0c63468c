package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateRecognizer(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Format {
	case "txt", "srt":
	default:
		return fmt.Errorf("transcription.format must be txt or srt, got %q", c.Transcription.Format)
	}
	if c.Transcription.Workers < 0 {
		return errors.New("transcription.workers must be zero or positive")
	}
	return nil
}

func (c *Config) validateRecognizer() error {
	switch c.Recognizer.Mode {
	case RecognizerModeLocal:
	case RecognizerModeServer:
		url := c.Recognizer.ServerURL
		if url == "" {
			return errors.New("recognizer.server_url must be set when recognizer.mode is server")
		}
		if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
			return fmt.Errorf("recognizer.server_url must be a ws:// or wss:// URL, got %q", url)
		}
	default:
		return fmt.Errorf("recognizer.mode must be local or server, got %q", c.Recognizer.Mode)
	}
	return nil
}

func (c *Config) validateModels() error {
	if c.Models.CatalogURL == "" {
		return errors.New("models.catalog_url must be set")
	}
	if c.Models.CatalogMaxAge <= 0 {
		return errors.New("models.catalog_max_age_hours must be positive")
	}
	if c.Models.DownloadTimeout <= 0 {
		return errors.New("models.download_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
