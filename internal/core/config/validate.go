package config

import (
	"fmt"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("host", c.Host, nonEmpty),
		criterio.Run("port", c.Port, validPort),
		c.validateDocPatterns(),
	)
}

// ValidateDeep adds I/O checks on top of Validate: the git executable must
// actually resolve. Used by commands that will shell out to git.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, gitExecutableExists),
	)
}

func (c *Config) validateDocPatterns() error {
	for _, pattern := range c.Docs.Include {
		if !doublestar.ValidatePattern(pattern) {
			return criterio.NewFieldErrors("docs.include", fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	return nil
}

func nonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

func validPort(p int) error {
	if p < 0 || p > 65535 {
		return fmt.Errorf("must be between 0 and 65535")
	}
	return nil
}

// gitExecutableExists validates that the git path is executable.
func gitExecutableExists(path string) error {
	if path == "" {
		return fmt.Errorf("is required")
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}
