// Package sqlite provides the SQLite table inventory.
//
// This file registers the SQLite adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dbcleaner/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

func init() {
	adapter.Register(core.DialectSQLite, adapter.Driver{
		DriverName: "sqlite",
		DSN: func(cfg core.ConnConfig) (string, error) {
			return buildSQLiteDSN(cfg), nil
		},
		New: func(conn core.Conn, logger *slog.Logger) (adapter.Adapter, error) {
			a, err := New(conn, logger)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		ConfigureDB: configureDB,
	})
}
