package adapter_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/all"
)

func TestSelfRegistration(t *testing.T) {
	dialects := adapter.ListDialects()

	assert.Contains(t, dialects, core.DialectMySQL)
	assert.Contains(t, dialects, core.DialectPostgreSQL)
	assert.Contains(t, dialects, core.DialectSQLite)
}

func TestIsRegistered(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		expected bool
	}{
		{"mysql", "mysql", true},
		{"mariadb alias", "mariadb", true},
		{"postgresql", "postgresql", true},
		{"postgres alias", "postgres", true},
		{"pg alias", "pg", true},
		{"sqlite3", "sqlite3", true},
		{"sqlite alias", "sqlite", true},
		{"mixed case", "PostgreSQL", true},
		{"unknown not registered", "oracle", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.IsRegistered(tt.dialect), "IsRegistered(%q)", tt.dialect)
		})
	}
}

func TestGet_DriverNames(t *testing.T) {
	tests := []struct {
		dialect    string
		driverName string
	}{
		{core.DialectMySQL, "mysql"},
		{core.DialectPostgreSQL, "pgx"},
		{core.DialectSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, ok := adapter.Get(tt.dialect)
			require.True(t, ok)
			assert.Equal(t, tt.driverName, d.DriverName)
			assert.NotNil(t, d.DSN)
			assert.NotNil(t, d.New)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "open.db")

	conn, err := adapter.Open(ctx, core.ConnConfig{Dialect: "sqlite", Path: path}, nil)
	require.NoError(t, err)
	defer func() { _ = conn.DB.Close() }()

	assert.Equal(t, core.DialectSQLite, conn.Dialect, "dialect is normalized")

	a, err := adapter.New(conn, nil)
	require.NoError(t, err)
	assert.Equal(t, core.DialectSQLite, a.DialectName())

	tables, err := a.ListTables(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestOpen_PingFailure(t *testing.T) {
	cfg := core.ConnConfig{
		Dialect: core.DialectPostgreSQL,
		DSN:     "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
	}

	_, err := adapter.Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping postgresql")
}
