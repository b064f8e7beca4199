// Package fixtures creates and tears down the sample schema used by
// dbcleaner's own integration tests.
//
// The schema has three tables: test_1, test_2 (with a foreign key to
// test_1) and the camel-cased dogBreeds. Migrations are applied with goose;
// one directory per dialect holds the dialect's DDL.
package fixtures

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// Seeded row counts per fixture table.
const (
	Test1Rows     = 3
	Test2Rows     = 3
	DogBreedsRows = 1
)

// Tables are the fixture table names.
var Tables = []string{"dogBreeds", "test_1", "test_2"}

// VersionTable is goose's bookkeeping table, created alongside the fixtures.
const VersionTable = "goose_db_version"

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// gooseDialects maps canonical dialect identifiers onto goose dialect names.
var gooseDialects = map[string]string{
	core.DialectMySQL:      "mysql",
	core.DialectPostgreSQL: "postgres",
	core.DialectSQLite:     "sqlite3",
}

// Apply creates and seeds the fixture tables on conn.
// For PostgreSQL the tables land in the connection's search_path schema.
func Apply(ctx context.Context, conn core.Conn) error {
	if conn.DB == nil {
		return fmt.Errorf("database not opened")
	}
	dialect := core.NormalizeDialect(conn.Dialect)
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return &adapter.UnsupportedDialectError{Dialect: conn.Dialect, Available: adapter.ListDialects()}
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn.DB, "migrations/"+dialect); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Reset drops every table visible to the adapter in the given schemas,
// including goose's version table, leaving an empty database.
func Reset(ctx context.Context, a adapter.Adapter, schemas ...string) error {
	tables, err := a.ListTables(ctx, core.ListOptions{Schemas: schemas})
	if err != nil {
		return err
	}
	return a.DropTables(ctx, tables)
}
