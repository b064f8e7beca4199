// Package config provides shared configuration types for dbcleaner.
// This package is decoupled from CLI concerns so that tests and tools can
// describe a database target the same way the CLI does.
package config

import (
	"fmt"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Dialect string `koanf:"dialect"` // mysql, postgresql, sqlite3

	// DSN is a complete driver connection string. When set, the
	// connection fields below are ignored.
	DSN string `koanf:"dsn"`

	// File-based databases (SQLite)
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g. postgres cascade, sqlite reset_sequences)
	Params map[string]any `koanf:"params"`
}

// ConnConfig converts the target into the adapter's connection description.
func (t *TargetConfig) ConnConfig() core.ConnConfig {
	return core.ConnConfig{
		Dialect:  t.Dialect,
		DSN:      t.DSN,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which dialects are available.
func (t *TargetConfig) Validate() error {
	if t.Dialect == "" {
		return fmt.Errorf("target dialect is required\nHint: Set target.dialect in dbcleaner.yaml or pass --dialect")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(t.Dialect) {
		return &adapter.UnsupportedDialectError{
			Dialect:   t.Dialect,
			Available: adapter.ListDialects(),
		}
	}

	if t.DSN == "" && t.Database == "" && t.Path == "" && core.NormalizeDialect(t.Dialect) != core.DialectSQLite {
		return fmt.Errorf("target database is required for %s\nHint: Set target.database or target.dsn", t.Dialect)
	}

	return nil
}

// ValidateTarget validates a target configuration.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("no target configured\nHint: Add a target section to dbcleaner.yaml or pass --dialect and --dsn")
	}
	return t.Validate()
}
