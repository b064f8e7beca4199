package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// Driver describes how to reach and inspect one dialect.
type Driver struct {
	// DriverName is the database/sql driver name passed to sql.Open.
	DriverName string

	// DSN builds a driver connection string from cfg.
	DSN func(cfg core.ConnConfig) (string, error)

	// New builds an adapter bound to an open connection.
	New func(conn core.Conn, logger *slog.Logger) (Adapter, error)

	// ConfigureDB, if set, tunes a freshly opened pool before it is pinged.
	ConfigureDB func(db *sql.DB, cfg core.ConnConfig)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

// Register adds a dialect driver to the registry.
// Called by adapter implementations in their init() functions.
func Register(name string, d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[core.NormalizeDialect(name)] = d
}

// Get retrieves a driver by dialect name or alias.
func Get(name string) (Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[core.NormalizeDialect(name)]
	return d, ok
}

// ListDialects returns all registered dialect names (sorted).
func ListDialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a dialect is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// New creates the adapter for conn's dialect.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func New(conn core.Conn, logger *slog.Logger) (Adapter, error) {
	d, err := lookup(conn.Dialect)
	if err != nil {
		return nil, err
	}
	if conn.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	return d.New(conn, logger)
}

// Open opens and pings a connection described by cfg.
// The returned Conn owns its *sql.DB; the caller must close it.
func Open(ctx context.Context, cfg core.ConnConfig, logger *slog.Logger) (core.Conn, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d, err := lookup(cfg.Dialect)
	if err != nil {
		return core.Conn{}, err
	}

	dsn := cfg.DSN
	if dsn == "" {
		if dsn, err = d.DSN(cfg); err != nil {
			return core.Conn{}, fmt.Errorf("failed to build %s connection string: %w", cfg.Dialect, err)
		}
	}

	dialect := core.NormalizeDialect(cfg.Dialect)
	logger.Debug("opening connection",
		slog.String("dialect", dialect),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return core.Conn{}, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}
	if d.ConfigureDB != nil {
		d.ConfigureDB(db, cfg)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return core.Conn{}, fmt.Errorf("failed to ping %s: %w", dialect, err)
	}

	schema := cfg.Schema
	if schema == "" && dialect == core.DialectMySQL {
		schema = cfg.Database
	}

	return core.Conn{
		DB:      db,
		Dialect: dialect,
		Schema:  schema,
		Params:  cfg.Params,
	}, nil
}

func lookup(dialect string) (Driver, error) {
	if dialect == "" {
		return Driver{}, fmt.Errorf("dialect not specified")
	}
	d, ok := Get(dialect)
	if !ok {
		return Driver{}, &UnsupportedDialectError{
			Dialect:   dialect,
			Available: ListDialects(),
		}
	}
	return d, nil
}

// UnsupportedDialectError is returned when a connection's dialect has no registered adapter.
type UnsupportedDialectError struct {
	Dialect   string
	Available []string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect %q\nAvailable dialects: %v\nHint: Check the dialect in dbcleaner.yaml or the --dialect flag", e.Dialect, e.Available)
}
