package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads the YAML config file and hands out the current configuration.
type Loader struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewLoader returns a loader holding the defaults.
func NewLoader() *Loader {
	return &Loader{cfg: DefaultConfig()}
}

// Load parses the file at path over the defaults. A missing file is not an
// error; the defaults simply stay in effect.
func (l *Loader) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultConfig().Storage.Path
	}
	if cfg.View.Limit <= 0 {
		cfg.View.Limit = DefaultConfig().View.Limit
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return nil
}

// Get returns the currently loaded configuration.
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}
