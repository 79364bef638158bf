package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 0, cfg.Port)
	assert.False(t, cfg.Remote)
	assert.Equal(t, "git", cfg.GitPath)
	assert.True(t, cfg.Sharing.IsEnabled())
	assert.Equal(t, ".", cfg.Docs.Dir)
	assert.Equal(t, []string{"**/*.md", "**/*.txt"}, cfg.Docs.Include)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9999
remote: true
base_branch: develop
sharing:
  enabled: false
docs:
  dir: plans
  include:
    - "**/*.md"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.Remote)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.False(t, cfg.Sharing.IsEnabled())
	assert.Equal(t, "plans", cfg.Docs.Dir)
	// Defaults still fill unset fields.
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "git", cfg.GitPath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestListenPort(t *testing.T) {
	tests := []struct {
		name   string
		port   int
		remote bool
		want   int
	}{
		{name: "local default", want: DefaultPort},
		{name: "remote default", remote: true, want: DefaultRemotePort},
		{name: "explicit override wins locally", port: 3000, want: 3000},
		{name: "explicit override wins remotely", port: 3000, remote: true, want: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Port: tt.port, Remote: tt.remote}
			assert.Equal(t, tt.want, c.ListenPort())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "empty host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "negative port", mutate: func(c *Config) { c.Port = -1 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "bad include glob", mutate: func(c *Config) { c.Docs.Include = []string{"[oops"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDeep_MissingGit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GitPath = "definitely-not-a-real-binary-xyz"

	assert.Error(t, cfg.ValidateDeep())
}
