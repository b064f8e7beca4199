// Package postgres provides the PostgreSQL table inventory.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dbcleaner/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

func init() {
	adapter.Register(core.DialectPostgreSQL, adapter.Driver{
		DriverName: "pgx",
		DSN: func(cfg core.ConnConfig) (string, error) {
			return buildPostgresDSN(cfg), nil
		},
		New: func(conn core.Conn, logger *slog.Logger) (adapter.Adapter, error) {
			a, err := New(conn, logger)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	})
}
