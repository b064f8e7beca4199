// Package cleantest wires the cleaner into Go tests.
//
//	func TestSignup(t *testing.T) {
//		cleantest.CleanOnCleanup(t, conn, core.CleanOptions{IgnoreTables: []string{"schema_migrations"}})
//		...
//	}
package cleantest

import (
	"context"
	"testing"

	"github.com/leapstack-labs/dbcleaner/pkg/cleaner"
	"github.com/leapstack-labs/dbcleaner/pkg/core"

	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/all" // register bundled dialects
)

// Clean empties every table in scope now and fails the test on error.
func Clean(t testing.TB, conn core.Conn, opts core.CleanOptions) {
	t.Helper()
	if err := cleaner.Clean(context.Background(), conn, opts, nil); err != nil {
		t.Fatalf("failed to clean %s database: %v", conn.Dialect, err)
	}
}

// CleanOnCleanup empties every table in scope when the test and its subtests finish.
func CleanOnCleanup(t testing.TB, conn core.Conn, opts core.CleanOptions) {
	t.Helper()
	t.Cleanup(func() {
		if err := cleaner.Clean(context.Background(), conn, opts, nil); err != nil {
			t.Errorf("failed to clean %s database: %v", conn.Dialect, err)
		}
	})
}
