// Package config loads the gogdb configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "gogdb.yaml"

// Config is the complete gogdb configuration.
type Config struct {
	// StoragePath is the catalog data directory holding the product
	// JSON files and the published index store.
	StoragePath string `yaml:"storage_path"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StoragePath: "data",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from path, applying defaults for missing
// values. An empty path falls back to DefaultPath; a missing default
// file is not an error, a missing explicit file is. The GOGDB_STORAGE_PATH
// environment variable overrides the configured storage path.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv("GOGDB_STORAGE_PATH"); env != "" {
		cfg.StoragePath = env
	}
	if cfg.StoragePath == "" {
		return Config{}, fmt.Errorf("config %s: storage_path must not be empty", path)
	}
	return cfg, nil
}
