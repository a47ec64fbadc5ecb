package config

import "github.com/funcmetrics/funcmetrics/internal/metrics"

// Config is the top-level funcmetrics configuration.
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	LogLevel string        `yaml:"log_level"`
	View     ViewConfig    `yaml:"view"`
}

// StorageConfig selects where the embedded store lives.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ViewConfig holds display defaults for the view command.
type ViewConfig struct {
	Limit int `yaml:"limit"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Storage:  StorageConfig{Path: metrics.DefaultPath},
		LogLevel: "info",
		View:     ViewConfig{Limit: metrics.DefaultLimit},
	}
}
