package mas

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Config is the subset of a MAS config.yaml needed to cross-check Synapse.
type Config struct {
	Matrix Matrix `yaml:"matrix"`
}

// Matrix mirrors the matrix section of the MAS config.
type Matrix struct {
	Homeserver string `yaml:"homeserver"`
}

// Load reads and parses a MAS config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mas config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mas config: %w", err)
	}
	if cfg.Matrix.Homeserver == "" {
		return nil, fmt.Errorf("mas config: matrix.homeserver is required")
	}
	return &cfg, nil
}
