package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)", c.OutputFormat, strings.Join(OutputModes, ", "))
	}
	if c.Interpreter.MaxCallDepth <= 0 {
		return fmt.Errorf("interpreter.max_call_depth must be positive, got %d", c.Interpreter.MaxCallDepth)
	}
	if c.Tape.MinLength <= 0 {
		return fmt.Errorf("tape.min_length must be positive, got %d", c.Tape.MinLength)
	}
	if c.Tape.MaxSteps < 0 {
		return fmt.Errorf("tape.max_steps must not be negative, got %d", c.Tape.MaxSteps)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}
