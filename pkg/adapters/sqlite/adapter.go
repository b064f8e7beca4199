// Package sqlite provides the SQLite table inventory.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var dialectConfig = &core.DialectConfig{
	Name:        core.DialectSQLite,
	Quote:       `"`,
	Placeholder: core.PlaceholderQuestion,
}

// Params holds SQLite-specific settings.
// Parsed from core.Conn.Params using mapstructure.
type Params struct {
	// ResetSequences clears sqlite_sequence entries of truncated tables so
	// AUTOINCREMENT counters restart (default true).
	ResetSequences bool `mapstructure:"reset_sequences"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{ResetSequences: true}
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid sqlite params: %w", err)
	}
	return p, nil
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a SQLite adapter bound to conn.
func New(conn core.Conn, logger *slog.Logger) (*Adapter, error) {
	params, err := parseParams(conn.Params)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		BaseSQLAdapter: adapter.NewBase(conn, dialectConfig, logger),
		params:         params,
	}, nil
}

// ListTables lists tables from sqlite_master, skipping SQLite's internal
// sqlite_* tables. SQLite has no schemas, so opts.Schemas is not consulted.
func (a *Adapter) ListTables(ctx context.Context, opts core.ListOptions) ([]core.TableRef, error) {
	tables, err := a.QueryTables(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	tables = adapter.FilterIgnored(tables, opts.IgnoreTables)
	adapter.SortTables(tables)
	return tables, nil
}

// DropTables drops each table in turn, without a wrapping transaction.
func (a *Adapter) DropTables(ctx context.Context, tables []core.TableRef) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	return a.ExecEach(ctx, a.DB, "DROP TABLE", tables)
}

// TruncateTables deletes all rows (SQLite has no TRUNCATE) and resets the
// AUTOINCREMENT counters of the emptied tables.
func (a *Adapter) TruncateTables(ctx context.Context, tables []core.TableRef) error {
	if len(tables) == 0 {
		return nil
	}
	if err := a.DeleteInPasses(ctx, tables); err != nil {
		return err
	}
	if !a.params.ResetSequences {
		return nil
	}
	return a.resetSequences(ctx, tables)
}

// DeleteTables deletes all rows table by table.
func (a *Adapter) DeleteTables(ctx context.Context, tables []core.TableRef) error {
	return a.DeleteInPasses(ctx, tables)
}

// resetSequences removes the tables' rows from sqlite_sequence, which only
// exists once some table declared AUTOINCREMENT.
func (a *Adapter) resetSequences(ctx context.Context, tables []core.TableRef) error {
	var exists int
	err := a.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up sqlite_sequence: %w", err)
	}
	if exists == 0 {
		return nil
	}

	args := make([]any, len(tables))
	for i, t := range tables {
		args[i] = t.Name
	}
	query := fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name IN (%s)", a.Dialect.Placeholders(len(tables))) //nolint:gosec // placeholders only
	if _, err := a.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reset sequences: %w", err)
	}
	return nil
}

// buildSQLiteDSN returns the database path with driver options as query parameters.
// Use ":memory:" (the default) for an in-memory database.
func buildSQLiteDSN(cfg core.ConnConfig) string {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range cfg.Options {
		q.Add(k, v)
	}
	return path + "?" + q.Encode()
}

// configureDB limits the pool to one connection: each connection to
// ":memory:" is a separate database, and SQLite serializes writers anyway.
func configureDB(db *sql.DB, _ core.ConnConfig) {
	db.SetMaxOpenConns(1)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
