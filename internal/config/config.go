// Package config loads the xlsplit configuration from an optional YAML file
// and validates it. Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

// ConversionConfig controls how workbooks are split.
type ConversionConfig struct {
	// ChunkSize is the number of records per output file (default: 100000).
	ChunkSize int `yaml:"chunk_size" validate:"gt=0"`
	// BatchSize is the number of rows read between yield points (default: 10000).
	BatchSize int `yaml:"batch_size" validate:"gt=0"`
	// ContentMode is "inline" or "metadata" (default: metadata when writing files).
	ContentMode string `yaml:"content_mode" validate:"oneof=inline metadata"`
	// OutputDir receives chunk files (default: ".").
	OutputDir string `yaml:"output_dir" validate:"required"`
	// Manifest writes manifest.json next to the chunks.
	Manifest bool `yaml:"manifest"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error (default: info).
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	// Format is text or json (default: text).
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	// Addr is the listen address (default: :8080).
	Addr string `yaml:"addr" validate:"required"`
	// MaxUploadBytes bounds uploaded workbooks (default: 256 MiB).
	MaxUploadBytes int64 `yaml:"max_upload_bytes" validate:"gt=0"`
	// ReadTimeout bounds reading a request (default: 5m).
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`
	// ShutdownTimeout bounds graceful shutdown (default: 30s).
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	// WorkDir holds per-job chunk directories (default: system temp dir).
	WorkDir string `yaml:"work_dir"`
	// JobTTL is how long finished jobs stay downloadable (default: 1h).
	JobTTL time.Duration `yaml:"job_ttl" validate:"gte=0"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		cfg.applyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Conversion.ChunkSize == 0 {
		c.Conversion.ChunkSize = 100000
	}
	if c.Conversion.BatchSize == 0 {
		c.Conversion.BatchSize = 10000
	}
	if c.Conversion.ContentMode == "" {
		c.Conversion.ContentMode = "metadata"
	}
	if c.Conversion.OutputDir == "" {
		c.Conversion.OutputDir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 256 << 20
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.JobTTL == 0 {
		c.Server.JobTTL = time.Hour
	}
}
