package core

import "database/sql"

// Conn is an open database handle tagged with its dialect.
// The caller owns DB; dbcleaner never closes a Conn it did not open.
type Conn struct {
	DB *sql.DB

	// Dialect is a dialect identifier or alias (mysql, postgresql, sqlite3).
	Dialect string

	// Schema is the default schema. For MySQL it is the database name
	// used to scope information_schema lookups.
	Schema string

	// Params holds dialect-specific settings, decoded by each adapter.
	Params map[string]any
}

// ConnConfig holds configuration for opening a database connection.
type ConnConfig struct {
	Dialect  string
	DSN      string // Full driver DSN; takes precedence over the discrete fields
	Path     string // SQLite database file
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}
