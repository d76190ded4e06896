package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/handiism/isd-downloader/internal/model"
)

// DefaultOutputDirectory is used when a caller does not name an output directory.
const DefaultOutputDirectory = "data"

// Settings holds all configuration options.
//
// Environment variables only replace a field when they are set, so values
// loaded from a JSON file survive an empty environment.
type Settings struct {
	// Sources
	RegistryURL string `json:"registry_url" env:"ISD_REGISTRY_URL, overwrite"`
	BaseDataURL string `json:"base_data_url" env:"ISD_BASE_DATA_URL, overwrite"`

	// Output
	OutputDirectory       string `json:"output_directory" env:"ISD_OUTPUT_DIRECTORY, overwrite"`
	DecompressedExtension string `json:"decompressed_extension" env:"ISD_DECOMPRESSED_EXTENSION, overwrite"`

	// Network settings
	RequestTimeout    float64 `json:"request_timeout" env:"ISD_REQUEST_TIMEOUT, overwrite"`
	MaxRetries        int     `json:"max_retries" env:"ISD_MAX_RETRIES, overwrite"`
	RetryWaitTime     float64 `json:"retry_wait_time" env:"ISD_RETRY_WAIT_TIME, overwrite"`
	RetryMaxWaitTime  float64 `json:"retry_max_wait_time" env:"ISD_RETRY_MAX_WAIT_TIME, overwrite"`
	DownloadChunkSize int     `json:"download_chunk_size" env:"ISD_DOWNLOAD_CHUNK_SIZE, overwrite"`
	UserAgent         string  `json:"user_agent" env:"ISD_USER_AGENT, overwrite"`

	// Metrics
	MetricsTextfile string `json:"metrics_textfile" env:"ISD_METRICS_TEXTFILE, overwrite"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		RegistryURL: "https://www1.ncdc.noaa.gov/pub/data/noaa/isd-history.txt",
		BaseDataURL: "https://www1.ncdc.noaa.gov/pub/data/noaa/",

		OutputDirectory:       DefaultOutputDirectory,
		DecompressedExtension: "",

		RequestTimeout:    60,
		MaxRetries:        3,
		RetryWaitTime:     0.5,
		RetryMaxWaitTime:  8,
		DownloadChunkSize: 1024,
		UserAgent:         "ISDDownloader",
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error; defaults are returned instead.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadEnvFiles loads .env and .env.local from the working directory when
// present. Variables already set in the process environment win over .env;
// .env.local overrides both.
func LoadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}

// ApplyEnv overrides settings with ISD_* environment variables.
func (s *Settings) ApplyEnv(ctx context.Context) error {
	return s.applyLookuper(ctx, envconfig.OsLookuper())
}

func (s *Settings) applyLookuper(ctx context.Context, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   s,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	return nil
}

// Validate checks that settings are usable.
func (s *Settings) Validate() error {
	if s.RegistryURL == "" {
		return fmt.Errorf("registry_url must not be empty")
	}
	if s.BaseDataURL == "" {
		return fmt.Errorf("base_data_url must not be empty")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", s.MaxRetries)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %v", s.RequestTimeout)
	}
	if s.DownloadChunkSize <= 0 {
		return fmt.Errorf("download_chunk_size must be positive, got %d", s.DownloadChunkSize)
	}
	return nil
}

// Timeout returns RequestTimeout as a duration. Zero disables the timeout.
func (s *Settings) Timeout() time.Duration {
	return seconds(s.RequestTimeout)
}

// RetryWait returns RetryWaitTime as a duration.
func (s *Settings) RetryWait() time.Duration {
	return seconds(s.RetryWaitTime)
}

// RetryMaxWait returns RetryMaxWaitTime as a duration.
func (s *Settings) RetryMaxWait() time.Duration {
	return seconds(s.RetryMaxWaitTime)
}

// ToArchiveConfig converts settings to ArchiveConfig.
func (s *Settings) ToArchiveConfig() *model.ArchiveConfig {
	return &model.ArchiveConfig{
		OutputDirectory:       s.OutputDirectory,
		DecompressedExtension: s.DecompressedExtension,
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
