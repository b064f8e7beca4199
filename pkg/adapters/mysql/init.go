// Package mysql provides the MySQL table inventory.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dbcleaner/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

func init() {
	adapter.Register(core.DialectMySQL, adapter.Driver{
		DriverName: "mysql",
		DSN: func(cfg core.ConnConfig) (string, error) {
			return buildMySQLDSN(cfg), nil
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
