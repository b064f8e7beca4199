package fixtures_test

import (
	"context"
	"testing"

	"github.com/leapstack-labs/dbcleaner/internal/fixtures"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/sqlite"
)

func TestApplyAndReset(t *testing.T) {
	ctx := context.Background()
	conn, err := adapter.Open(ctx, core.ConnConfig{Dialect: core.DialectSQLite}, nil)
	require.NoError(t, err)
	defer func() { _ = conn.DB.Close() }()

	require.NoError(t, fixtures.Apply(ctx, conn))

	a, err := adapter.New(conn, nil)
	require.NoError(t, err)

	tables, err := a.ListTables(ctx, core.ListOptions{IgnoreTables: []string{fixtures.VersionTable}})
	require.NoError(t, err)
	assert.Equal(t, fixtures.Tables, core.TableNames(tables))

	expected := map[string]int64{
		"test_1":    fixtures.Test1Rows,
		"test_2":    fixtures.Test2Rows,
		"dogBreeds": fixtures.DogBreedsRows,
	}
	for table, rows := range expected {
		n, err := a.RowCount(ctx, core.TableRef{Name: table})
		require.NoError(t, err)
		assert.Equal(t, rows, n, "table %s", table)
	}

	// Applying twice is a no-op once goose has recorded the versions.
	require.NoError(t, fixtures.Apply(ctx, conn))

	require.NoError(t, fixtures.Reset(ctx, a))
	tables, err = a.ListTables(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestApply_Errors(t *testing.T) {
	err := fixtures.Apply(context.Background(), core.Conn{Dialect: core.DialectSQLite})
	require.Error(t, err)

	conn, err := adapter.Open(context.Background(), core.ConnConfig{Dialect: core.DialectSQLite}, nil)
	require.NoError(t, err)
	defer func() { _ = conn.DB.Close() }()

	conn.Dialect = "oracle"
	err = fixtures.Apply(context.Background(), conn)
	var unsupported *adapter.UnsupportedDialectError
	require.ErrorAs(t, err, &unsupported)
}
