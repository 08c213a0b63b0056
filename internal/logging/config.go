package logging

import (
	"fmt"
	"os"
)

// Config holds logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string            `koanf:"format"`
	Fields map[string]string `koanf:"fields"`
	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// NewDefaultConfig returns the production defaults: info level, JSON output.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Caller: true,
	}
}

// Validate checks the level and format values.
func (c *Config) Validate() error {
	if _, err := LevelFromString(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: must be json or console", c.Format)
	}
	return nil
}

// outputFor returns stderr for console output so TUI sessions can keep
// stdout clean.
func (c *Config) outputFor() *os.File {
	if c.Format == "console" {
		return os.Stderr
	}
	return os.Stdout
}
