// Package mysql provides the MySQL table inventory.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

const (
	disableFKChecks = "SET FOREIGN_KEY_CHECKS=0"
	enableFKChecks  = "SET FOREIGN_KEY_CHECKS=1"
)

var dialectConfig = &core.DialectConfig{
	Name:        core.DialectMySQL,
	Quote:       "`",
	Placeholder: core.PlaceholderQuestion,
}

// Params holds MySQL-specific settings.
// Parsed from core.Conn.Params using mapstructure.
type Params struct {
	// DisableForeignKeyChecks wraps drop, truncate and delete in
	// SET FOREIGN_KEY_CHECKS=0 / =1 (default true).
	DisableForeignKeyChecks bool `mapstructure:"disable_foreign_key_checks"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{DisableForeignKeyChecks: true}
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
		return nil, fmt.Errorf("invalid mysql params: %w", err)
	}
	return p, nil
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a MySQL adapter bound to conn.
// conn.Schema names the database to scan; when empty the session's
// current database (DATABASE()) is used.
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

// ListTables lists base tables from information_schema. Schemas in opts
// are not consulted: in MySQL the schema is a database. With conn.Schema set,
// refs are qualified by it so later statements hit that database even when
// the session's current database differs. Otherwise DATABASE() is scanned
// and refs stay bare.
func (a *Adapter) ListTables(ctx context.Context, opts core.ListOptions) ([]core.TableRef, error) {
	var (
		tables []core.TableRef
		err    error
	)
	if a.Conn.Schema != "" {
		tables, err = a.QueryTables(ctx,
			"SELECT TABLE_NAME FROM information_schema.tables WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME",
			a.Conn.Schema)
		for i := range tables {
			tables[i].Schema = a.Conn.Schema
		}
	} else {
		tables, err = a.QueryTables(ctx,
			"SELECT TABLE_NAME FROM information_schema.tables WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME")
	}
	if err != nil {
		return nil, err
	}
	tables = adapter.FilterIgnored(tables, opts.IgnoreTables)
	adapter.SortTables(tables)
	return tables, nil
}

// DropTables drops each table inside one transaction with foreign key checks disabled.
func (a *Adapter) DropTables(ctx context.Context, tables []core.TableRef) error {
	return a.eachWithoutFKChecks(ctx, "DROP TABLE", tables)
}

// TruncateTables truncates each table inside one transaction with foreign key checks disabled.
func (a *Adapter) TruncateTables(ctx context.Context, tables []core.TableRef) error {
	return a.eachWithoutFKChecks(ctx, "TRUNCATE TABLE", tables)
}

// DeleteTables deletes all rows of each table with foreign key checks disabled.
func (a *Adapter) DeleteTables(ctx context.Context, tables []core.TableRef) error {
	return a.eachWithoutFKChecks(ctx, "DELETE FROM", tables)
}

// eachWithoutFKChecks pins one connection so that FOREIGN_KEY_CHECKS,
// a session variable, covers every statement and is restored afterwards.
func (a *Adapter) eachWithoutFKChecks(ctx context.Context, stmt string, tables []core.TableRef) error {
	if len(tables) == 0 {
		return nil
	}
	setup, teardown := "", ""
	if a.params.DisableForeignKeyChecks {
		setup, teardown = disableFKChecks, enableFKChecks
	}
	return a.InSession(ctx, setup, teardown, func(tx *sql.Tx) error {
		return a.ExecEach(ctx, tx, stmt, tables)
	})
}

// buildMySQLDSN constructs a go-sql-driver DSN.
func buildMySQLDSN(cfg core.ConnConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	c.DBName = cfg.Database
	if len(cfg.Options) > 0 {
		c.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			c.Params[k] = v
		}
	}
	return c.FormatDSN()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
