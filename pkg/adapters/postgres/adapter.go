// Package postgres provides the PostgreSQL table inventory.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jackc/pgx/v5"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// DefaultSchema is scanned when neither the options nor the connection name a schema.
const DefaultSchema = "public"

var dialectConfig = &core.DialectConfig{
	Name:          core.DialectPostgreSQL,
	Quote:         `"`,
	DefaultSchema: DefaultSchema,
	Placeholder:   core.PlaceholderDollar,
	QualifyTables: true,
}

// Params holds PostgreSQL-specific settings.
// Parsed from core.Conn.Params using mapstructure.
type Params struct {
	// RestartIdentity adds RESTART IDENTITY to TRUNCATE (default true).
	RestartIdentity bool `mapstructure:"restart_identity"`

	// Cascade adds CASCADE to TRUNCATE and DROP (default true).
	Cascade bool `mapstructure:"cascade"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{RestartIdentity: true, Cascade: true}
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
		return nil, fmt.Errorf("invalid postgres params: %w", err)
	}
	return p, nil
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a PostgreSQL adapter bound to conn.
// If logger is nil, a discard logger is used.
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

// ListTables lists tables from pg_catalog.pg_tables in the requested schemas.
func (a *Adapter) ListTables(ctx context.Context, opts core.ListOptions) ([]core.TableRef, error) {
	schemas := opts.Schemas
	if len(schemas) == 0 {
		schema := a.Conn.Schema
		if schema == "" {
			schema = DefaultSchema
		}
		schemas = []string{schema}
	}

	query := fmt.Sprintf(`SELECT schemaname, tablename FROM pg_catalog.pg_tables WHERE schemaname IN (%s) ORDER BY schemaname, tablename`,
		a.Dialect.Placeholders(len(schemas)))
	args := make([]any, len(schemas))
	for i, s := range schemas {
		args[i] = s
	}

	tables, err := a.QueryTables(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	tables = adapter.FilterIgnored(tables, opts.IgnoreTables)
	adapter.SortTables(tables)
	return tables, nil
}

// DropTables drops every table in a single DROP TABLE IF EXISTS statement.
func (a *Adapter) DropTables(ctx context.Context, tables []core.TableRef) error {
	if len(tables) == 0 {
		return nil
	}
	query := "DROP TABLE IF EXISTS " + joinIdentifiers(tables)
	if a.params.Cascade {
		query += " CASCADE"
	}
	return a.exec(ctx, query)
}

// TruncateTables empties every table in a single TRUNCATE statement.
func (a *Adapter) TruncateTables(ctx context.Context, tables []core.TableRef) error {
	if len(tables) == 0 {
		return nil
	}
	query := "TRUNCATE TABLE " + joinIdentifiers(tables)
	if a.params.RestartIdentity {
		query += " RESTART IDENTITY"
	}
	if a.params.Cascade {
		query += " CASCADE"
	}
	return a.exec(ctx, query)
}

// DeleteTables deletes all rows table by table, retrying tables blocked by
// foreign keys until a pass makes no progress.
func (a *Adapter) DeleteTables(ctx context.Context, tables []core.TableRef) error {
	return a.DeleteInPasses(ctx, tables)
}

func (a *Adapter) exec(ctx context.Context, query string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	a.Logger.Debug("executing", slog.String("sql", query))
	if _, err := a.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute %q: %w", query, err)
	}
	return nil
}

// joinIdentifiers renders refs as a comma-separated list of quoted identifiers.
func joinIdentifiers(tables []core.TableRef) string {
	parts := make([]string, len(tables))
	for i, t := range tables {
		ident := pgx.Identifier{t.Name}
		if t.Schema != "" {
			ident = pgx.Identifier{t.Schema, t.Name}
		}
		parts[i] = ident.Sanitize()
	}
	return strings.Join(parts, ", ")
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.ConnConfig) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		quoteDSNValue(host), port, quoteDSNValue(cfg.Database), quoteDSNValue(sslmode))

	if cfg.Username != "" {
		dsn += " user=" + quoteDSNValue(cfg.Username)
	}
	if cfg.Password != "" {
		dsn += " password=" + quoteDSNValue(cfg.Password)
	}

	return dsn
}

// quoteDSNValue single-quotes a key=value DSN value when it is empty or holds
// whitespace, quotes or backslashes, escaping ' and \ with a backslash.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
