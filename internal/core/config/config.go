// Package config handles configuration loading and validation for waggle.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default listen ports. Remote mode binds a different port so a tunneled
// reviewer session never collides with a local one.
const (
	DefaultPort       = 4517
	DefaultRemotePort = 8517
)

// Config holds the application configuration.
//
// Everything the session server needs is resolved here at startup; the
// server never reads ambient state while handling requests.
type Config struct {
	// Host to bind. Defaults to loopback; remote mode typically overrides
	// this via config to expose the server on a tunnel interface.
	Host string `yaml:"host"`
	// Port overrides the per-mode default when > 0.
	Port int `yaml:"port"`
	// Remote suppresses browser auto-launch and switches the default port.
	Remote bool `yaml:"remote"`

	GitPath string `yaml:"git_path"`
	// BaseBranch is the default comparison branch for branch diffs.
	// Detected from origin/HEAD when empty.
	BaseBranch string `yaml:"base_branch"`

	Sharing SharingConfig `yaml:"sharing"`
	Docs    DocsConfig    `yaml:"docs"`

	// UploadDir overrides the per-session temporary attachment directory.
	UploadDir string `yaml:"upload_dir"`
}

// SharingConfig controls the share-token endpoints.
type SharingConfig struct {
	// Enabled: nil = on (default), false = the share endpoints return 403.
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether session sharing is on.
func (s SharingConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// DocsConfig controls plan document discovery for `waggle plan`.
type DocsConfig struct {
	// Dir is the discovery root, relative to the working directory.
	Dir string `yaml:"dir"`
	// Include glob patterns, doublestar syntax.
	Include []string `yaml:"include"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		GitPath: "git",
		Docs: DocsConfig{
			Dir:     ".",
			Include: []string{"**/*.md", "**/*.txt"},
		},
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
	if c.Docs.Dir == "" {
		c.Docs.Dir = defaults.Docs.Dir
	}
	if len(c.Docs.Include) == 0 {
		c.Docs.Include = defaults.Docs.Include
	}
}

// ListenPort returns the effective port: the explicit override when set,
// otherwise the per-mode default.
func (c *Config) ListenPort() int {
	if c.Port > 0 {
		return c.Port
	}
	if c.Remote {
		return DefaultRemotePort
	}
	return DefaultPort
}
