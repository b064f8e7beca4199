package core

import (
	"strconv"
	"strings"
)

// Canonical dialect identifiers.
const (
	DialectMySQL      = "mysql"
	DialectPostgreSQL = "postgresql"
	DialectSQLite     = "sqlite3"
)

// dialectAliases maps accepted spellings onto canonical dialect identifiers.
var dialectAliases = map[string]string{
	"mysql":      DialectMySQL,
	"mariadb":    DialectMySQL,
	"postgresql": DialectPostgreSQL,
	"postgres":   DialectPostgreSQL,
	"pg":         DialectPostgreSQL,
	"sqlite3":    DialectSQLite,
	"sqlite":     DialectSQLite,
}

// NormalizeDialect lowercases name and resolves known aliases.
// Unknown names are returned lowercased and trimmed so the caller can report them.
func NormalizeDialect(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := dialectAliases[n]; ok {
		return canonical
	}
	return n
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// DialectConfig holds the static configuration for a SQL dialect.
type DialectConfig struct {
	// Name is the canonical dialect identifier.
	Name string

	// Quote is the identifier quote character: " or `.
	Quote string

	// DefaultSchema is the schema scanned when none is configured.
	// Empty for dialects that have no schema concept in their table refs.
	DefaultSchema string

	// Placeholder defines how query parameters are formatted.
	Placeholder PlaceholderStyle

	// QualifyTables reports whether table refs carry their schema (schema.table).
	QualifyTables bool
}

// QuoteIdent quotes a single identifier, doubling any embedded quote characters.
func (d *DialectConfig) QuoteIdent(ident string) string {
	return d.Quote + strings.ReplaceAll(ident, d.Quote, d.Quote+d.Quote) + d.Quote
}

// FormatPlaceholder returns the placeholder for the 1-based parameter index.
func (d *DialectConfig) FormatPlaceholder(index int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// Placeholders returns count comma-separated placeholders starting at index 1.
func (d *DialectConfig) Placeholders(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.FormatPlaceholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
