// Package config provides configuration management for the dbcleaner CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and functionality. The shared TargetConfig is
// re-exported here via a type alias for convenience.
package config

import (
	intconfig "github.com/leapstack-labs/dbcleaner/internal/config"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// CleanOptions is an alias for the cleaner's options.
type CleanOptions = core.CleanOptions

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing internal/config.
type TargetConfig = intconfig.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	Environment      string               `koanf:"environment"`
	Verbose          bool                 `koanf:"verbose"`
	OutputFormat     string               `koanf:"output"`
	CountConcurrency int                  `koanf:"count_concurrency"`
	Target           *TargetConfig        `koanf:"target"`
	Clean            core.CleanOptions    `koanf:"clean"`
	Environments     map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig      `koanf:"target"`
	Clean  *core.CleanOptions `koanf:"clean"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultOutput = intconfig.DefaultOutput
	DefaultMode   = intconfig.DefaultMode
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)
