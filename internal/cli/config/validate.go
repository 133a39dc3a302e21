package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case OutputAuto, OutputText, OutputMarkdown, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want auto|text|markdown|json|yaml)", c.OutputFormat)
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
