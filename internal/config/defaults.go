package config

import "github.com/leapstack-labs/dbcleaner/pkg/core"

// Default configuration values.
const (
	DefaultMode             = core.ModeTruncate
	DefaultOutput           = "table"
	DefaultMySQLPort        = 3306
	DefaultPostgresPort     = 5432
	DefaultCountConcurrency = 4
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the dialect.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}

	// Store the canonical dialect name so aliases compare equal everywhere else
	t.Dialect = core.NormalizeDialect(t.Dialect)

	// Apply dialect-specific defaults
	if t.DSN != "" {
		return
	}
	switch t.Dialect {
	case core.DialectPostgreSQL:
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	case core.DialectMySQL:
		if t.Port == 0 {
			t.Port = DefaultMySQLPort
		}
	}
}

// ApplyCleanDefaults fills in the clean mode and schema list. A target
// schema, when set, replaces the default schema list.
func ApplyCleanDefaults(o *core.CleanOptions, t *TargetConfig) {
	if o == nil {
		return
	}
	if len(o.Schemas) == 0 && t != nil && t.Schema != "" {
		o.Schemas = []string{t.Schema}
	}
	*o = o.WithDefaults()
}
