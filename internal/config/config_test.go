package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Defaults.Format != "log" {
		t.Errorf("format = %q, want log", cfg.Defaults.Format)
	}
	if cfg.Defaults.Concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", cfg.Defaults.Concurrency)
	}
	if cfg.Database.MaxConnections != 4 {
		t.Errorf("max_connections = %d, want 4", cfg.Database.MaxConnections)
	}
	if cfg.TimeoutDuration() != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.TimeoutDuration())
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Format != "log" {
		t.Errorf("expected defaults, got format %q", cfg.Defaults.Format)
	}
}

func TestLoad_FromDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := `mas_config: /etc/mas/config.yaml
database:
  uri: postgres://readonly@db/synapse
  max_connections: 8
defaults:
  format: json
  timeout: 2m
  concurrency: 4
  log_level: debug
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MASConfig != "/etc/mas/config.yaml" {
		t.Errorf("mas_config = %q", cfg.MASConfig)
	}
	if cfg.Database.URI != "postgres://readonly@db/synapse" {
		t.Errorf("uri = %q", cfg.Database.URI)
	}
	if cfg.Database.MaxConnections != 8 {
		t.Errorf("max_connections = %d, want 8", cfg.Database.MaxConnections)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Defaults.Format)
	}
	if cfg.Defaults.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Defaults.Concurrency)
	}
	if cfg.Defaults.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.Defaults.LogLevel)
	}
	// Unset keys keep their defaults.
	if cfg.Defaults.LogFormat != "text" {
		t.Errorf("log_format = %q, want text", cfg.Defaults.LogFormat)
	}
	if cfg.TimeoutDuration() != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.TimeoutDuration())
	}
}

func TestLoad_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, FileName), []byte("defaults:\n  format: text\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("format = %q, want text", cfg.Defaults.Format)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("defaults: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestTimeoutDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 60 * time.Second},
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"invalid", 60 * time.Second},
		{"0s", 60 * time.Second},
		{"-5s", 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := Config{Defaults: Defaults{Timeout: tt.input}}
			if got := cfg.TimeoutDuration(); got != tt.want {
				t.Errorf("TimeoutDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
