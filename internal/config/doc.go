// Package config provides configuration management for isd-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - .env files and ISD_* environment overrides
//   - Conversion to ArchiveConfig for other packages
//
// # Precedence
//
// Settings are layered, later sources winning:
//
//	settings := config.DefaultSettings()       // built-in defaults
//	settings, err := config.Load(path)          // JSON file
//	err = config.LoadEnvFiles()                 // .env, .env.local
//	err = settings.ApplyEnv(ctx)                // ISD_* variables
//	// command line flags are applied by the caller
//
// # Configuration Options
//
// Settings includes options for:
//   - Registry and archive source URLs
//   - Output directory and decompressed file naming
//   - Request timeout and bounded retry with backoff
//   - Download chunk size
//   - Prometheus textfile export
package config
