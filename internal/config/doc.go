// Package config loads, validates, and defaults the TOML configuration for
// scribe. Values resolve in order: file settings, environment fallbacks,
// repository defaults. All path fields come back expanded and absolute.
package config
