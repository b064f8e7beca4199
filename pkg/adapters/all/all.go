// Package all registers every bundled dialect adapter.
//
//	import _ "github.com/leapstack-labs/dbcleaner/pkg/adapters/all"
package all

import (
	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/mysql"    // registers mysql
	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/postgres" // registers postgresql
	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/sqlite"   // registers sqlite3
)
