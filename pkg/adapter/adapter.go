// Package adapter provides the table inventory contract shared by every
// supported SQL dialect.
//
// An Adapter discovers user tables, counts their rows and empties or drops
// them using dialect-specific catalogs and syntax. Concrete adapters live in
// pkg/adapters/ subdirectories and register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// Adapter defines the interface that all dialect adapters must implement.
// Every method runs against the caller-supplied connection; an Adapter
// never opens or closes the underlying *sql.DB.
type Adapter interface {
	// DialectName returns the canonical dialect identifier.
	DialectName() string

	// DialectConfig returns the static quoting and placeholder rules.
	DialectConfig() *core.DialectConfig

	// ListTables returns the user tables in scope, minus ignored tables,
	// sorted by qualified name.
	ListTables(ctx context.Context, opts core.ListOptions) ([]core.TableRef, error)

	// RowCount returns the number of rows in a table.
	RowCount(ctx context.Context, table core.TableRef) (int64, error)

	// DropTables removes the given tables. An empty list is a no-op.
	DropTables(ctx context.Context, tables []core.TableRef) error

	// TruncateTables empties the given tables and resets identity counters
	// where the dialect supports it.
	TruncateTables(ctx context.Context, tables []core.TableRef) error

	// DeleteTables empties the given tables with DELETE FROM.
	DeleteTables(ctx context.Context, tables []core.TableRef) error
}
