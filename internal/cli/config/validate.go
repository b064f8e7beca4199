package config

import (
	"fmt"

	intconfig "github.com/leapstack-labs/dbcleaner/internal/config"
)

// Validate checks if the configuration is valid for commands that open a database.
func (c *Config) Validate() error {
	if err := intconfig.ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	if !c.Clean.Mode.Valid() {
		return fmt.Errorf("invalid clean mode %q\nHint: Use --mode truncate or --mode delete", c.Clean.Mode)
	}
	switch c.OutputFormat {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (want %q or %q)", c.OutputFormat, OutputTable, OutputJSON)
	}
	return nil
}
