package config

import (
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// FileName is the tool configuration file looked up in the working
// directory and then the home directory.
const FileName = ".synapsespectre.yml"

const defaultTimeout = 60 * time.Second

// Config holds all synapsespectre configuration.
type Config struct {
	MASConfig string   `yaml:"mas_config"`
	Database  Database `yaml:"database"`
	Defaults  Defaults `yaml:"defaults"`
}

// Database overrides connection behaviour.
type Database struct {
	URI            string `yaml:"uri"`             // replaces the DSN derived from homeserver.yaml
	MaxConnections int    `yaml:"max_connections"` // connection pool size
}

// Defaults holds default CLI flag values.
type Defaults struct {
	Format      string `yaml:"format"`
	Timeout     string `yaml:"timeout"` // parsed as time.Duration
	Concurrency int    `yaml:"concurrency"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Database: Database{
			MaxConnections: 4,
		},
		Defaults: Defaults{
			Format:      "log",
			Timeout:     "60s",
			Concurrency: 1,
			LogLevel:    "info",
			LogFormat:   "text",
		},
	}
}

// Load reads configuration from .synapsespectre.yml in the given directory,
// falling back to ~/.synapsespectre.yml. Returns DefaultConfig if no file found.
func Load(dir string) (Config, error) {
	cfg := DefaultConfig()

	// Try CWD first, then home directory.
	paths := []string{filepath.Join(dir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue // file not found, try next
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	return cfg, nil
}

// TimeoutDuration parses the Defaults.Timeout string as a time.Duration.
// Returns 60s if parsing fails.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Defaults.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Defaults.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}
