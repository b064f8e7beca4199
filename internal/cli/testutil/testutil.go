// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbcleaner/internal/fixtures"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"

	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/sqlite"
)

// SetupTestProject creates a temporary project holding a seeded SQLite
// database (test.db) and a dbcleaner.yaml pointing at it, and makes it the
// working directory. Returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	SeedSQLite(t, filepath.Join(tmpDir, "test.db"))

	config := `target:
  dialect: sqlite
  path: test.db
clean:
  ignore_tables:
    - goose_db_version
`
	if err := os.WriteFile(filepath.Join(tmpDir, "dbcleaner.yaml"), []byte(config), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Chdir(tmpDir)
	return tmpDir
}

// SeedSQLite creates the fixture tables in the SQLite file at path.
func SeedSQLite(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()

	conn, err := adapter.Open(ctx, core.ConnConfig{Dialect: core.DialectSQLite, Path: path}, nil)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = conn.DB.Close() }()

	if err := fixtures.Apply(ctx, conn); err != nil {
		t.Fatalf("failed to seed %s: %v", path, err)
	}
}

// RowCount returns the number of rows in table of the SQLite file at path.
func RowCount(t *testing.T, path, table string) int64 {
	t.Helper()
	ctx := context.Background()

	conn, err := adapter.Open(ctx, core.ConnConfig{Dialect: core.DialectSQLite, Path: path}, nil)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = conn.DB.Close() }()

	a, err := adapter.New(conn, nil)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	n, err := a.RowCount(ctx, core.ParseTableRef(table))
	if err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// Output captures a command's stdout and stderr.
type Output struct {
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewOutput returns empty output buffers.
func NewOutput() *Output {
	return &Output{Out: new(bytes.Buffer), ErrOut: new(bytes.Buffer)}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}
