package adapter

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDialect = &core.DialectConfig{
	Name:  "testdb",
	Quote: `"`,
}

var testQualifiedDialect = &core.DialectConfig{
	Name:          "testdb",
	Quote:         `"`,
	QualifyTables: true,
}

// newMockBase returns a BaseSQLAdapter over sqlmock with exact query matching.
func newMockBase(t *testing.T, d *core.DialectConfig) (*BaseSQLAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	base := NewBase(core.Conn{DB: db, Dialect: d.Name}, d, nil)
	return &base, mock
}

func TestNewBase(t *testing.T) {
	base := NewBase(core.Conn{Dialect: "testdb"}, testDialect, nil)

	assert.NotNil(t, base.Logger, "nil logger should be replaced by a discard logger")
	assert.False(t, base.IsConnected())
	assert.Equal(t, "testdb", base.DialectName())
	assert.Same(t, testDialect, base.DialectConfig())
}

func TestBaseSQLAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	base := &BaseSQLAdapter{Dialect: testDialect}
	tables := []core.TableRef{{Name: "a"}}

	_, err := base.RowCount(ctx, core.TableRef{Name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")

	_, err = base.QueryTables(ctx, "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")

	err = base.InSession(ctx, "", "", func(*sql.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")

	err = base.DeleteInPasses(ctx, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}

func TestBaseSQLAdapter_RowCount(t *testing.T) {
	tests := []struct {
		name      string
		table     core.TableRef
		setupMock func(mock sqlmock.Sqlmock)
		expected  int64
		errMsg    string
	}{
		{
			name:  "bare table",
			table: core.TableRef{Name: "test_1"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT(*) FROM "test_1"`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			},
			expected: 3,
		},
		{
			name:  "qualified camel cased table",
			table: core.TableRef{Schema: "public", Name: "dogBreeds"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT(*) FROM "public"."dogBreeds"`).
					WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
			},
			expected: 0,
		},
		{
			name:  "count as bytes",
			table: core.TableRef{Name: "t"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT(*) FROM "t"`).
					WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow([]byte("42")))
			},
			expected: 42,
		},
		{
			name:  "query error",
			table: core.TableRef{Name: "missing"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT(*) FROM "missing"`).WillReturnError(assert.AnError)
			},
			errMsg: "failed to count rows in missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock := newMockBase(t, testDialect)
			tt.setupMock(mock)

			n, err := base.RowCount(context.Background(), tt.table)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.ErrorIs(t, err, assert.AnError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_QueryTables(t *testing.T) {
	t.Run("bare names", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectQuery("SELECT name FROM catalog").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("test_1").AddRow("dogBreeds"))

		tables, err := base.QueryTables(context.Background(), "SELECT name FROM catalog")
		require.NoError(t, err)
		assert.Equal(t, []core.TableRef{{Name: "test_1"}, {Name: "dogBreeds"}}, tables)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("qualified names with args", func(t *testing.T) {
		base, mock := newMockBase(t, testQualifiedDialect)
		mock.ExpectQuery("SELECT schema, name FROM catalog WHERE schema = ?").
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{"schema", "name"}).AddRow("public", "test_1"))

		tables, err := base.QueryTables(context.Background(), "SELECT schema, name FROM catalog WHERE schema = ?", "public")
		require.NoError(t, err)
		assert.Equal(t, []core.TableRef{{Schema: "public", Name: "test_1"}}, tables)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no tables", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectQuery("SELECT name FROM catalog").WillReturnRows(sqlmock.NewRows([]string{"name"}))

		tables, err := base.QueryTables(context.Background(), "SELECT name FROM catalog")
		require.NoError(t, err)
		assert.Empty(t, tables)
	})

	t.Run("query error", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectQuery("SELECT name FROM catalog").WillReturnError(assert.AnError)

		_, err := base.QueryTables(context.Background(), "SELECT name FROM catalog")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list tables")
	})

	t.Run("row error", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectQuery("SELECT name FROM catalog").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").RowError(0, assert.AnError))

		_, err := base.QueryTables(context.Background(), "SELECT name FROM catalog")
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestBaseSQLAdapter_ExecEach(t *testing.T) {
	tables := []core.TableRef{{Name: "a"}, {Name: "b"}}

	t.Run("runs in order", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec(`DROP TABLE "a"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DROP TABLE "b"`).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, base.ExecEach(context.Background(), base.DB, "DROP TABLE", tables))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at first failure", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec(`DROP TABLE "a"`).WillReturnError(assert.AnError)

		err := base.ExecEach(context.Background(), base.DB, "DROP TABLE", tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "drop table a failed")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBaseSQLAdapter_InSession(t *testing.T) {
	t.Run("setup and teardown wrap the transaction", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec("SET checks=0").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "a"`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
		mock.ExpectExec("SET checks=1").WillReturnResult(sqlmock.NewResult(0, 0))

		err := base.InSession(context.Background(), "SET checks=0", "SET checks=1", func(tx *sql.Tx) error {
			return base.ExecEach(context.Background(), tx, "DELETE FROM", []core.TableRef{{Name: "a"}})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 1, base.DB.Stats().Idle, "connection should return to the pool")
	})

	t.Run("teardown still runs when work fails", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		workErr := errors.New("boom")
		mock.ExpectExec("SET checks=0").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectExec("SET checks=1").WillReturnResult(sqlmock.NewResult(0, 0))

		err := base.InSession(context.Background(), "SET checks=0", "SET checks=1", func(*sql.Tx) error {
			return workErr
		})
		require.ErrorIs(t, err, workErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed teardown discards the connection", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec("SET checks=0").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectExec("SET checks=1").WillReturnError(assert.AnError)
		mock.ExpectClose()

		err := base.InSession(context.Background(), "SET checks=0", "SET checks=1", func(*sql.Tx) error { return nil })
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), `failed to execute "SET checks=1"`)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 0, base.DB.Stats().OpenConnections, "connection should not return to the pool")
	})

	t.Run("failed setup skips the work", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec("SET checks=0").WillReturnError(assert.AnError)

		called := false
		err := base.InSession(context.Background(), "SET checks=0", "SET checks=1", func(*sql.Tx) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, assert.AnError)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty setup and teardown are skipped", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectBegin()
		mock.ExpectCommit()

		require.NoError(t, base.InSession(context.Background(), "", "", func(*sql.Tx) error { return nil }))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectBegin().WillReturnError(assert.AnError)

		err := base.InSession(context.Background(), "", "", func(*sql.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestBaseSQLAdapter_DeleteInPasses(t *testing.T) {
	tables := []core.TableRef{{Name: "parent"}, {Name: "child"}}

	t.Run("blocked table is retried after its dependents", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec(`DELETE FROM "parent"`).WillReturnError(errors.New("foreign key violation"))
		mock.ExpectExec(`DELETE FROM "child"`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "parent"`).WillReturnResult(sqlmock.NewResult(0, 3))

		require.NoError(t, base.DeleteInPasses(context.Background(), tables))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pass without progress fails", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		mock.ExpectExec(`DELETE FROM "parent"`).WillReturnError(assert.AnError)
		mock.ExpectExec(`DELETE FROM "child"`).WillReturnError(assert.AnError)

		err := base.DeleteInPasses(context.Background(), tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete from child failed")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no tables", func(t *testing.T) {
		base, mock := newMockBase(t, testDialect)
		require.NoError(t, base.DeleteInPasses(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFilterIgnored(t *testing.T) {
	tables := []core.TableRef{
		{Schema: "public", Name: "test_1"},
		{Schema: "public", Name: "test_2"},
		{Schema: "public2", Name: "test_1"},
		{Name: "dogBreeds"},
	}

	tests := []struct {
		name     string
		ignore   []string
		expected []string
	}{
		{"nothing ignored", nil, []string{"public.test_1", "public.test_2", "public2.test_1", "dogBreeds"}},
		{"bare name matches every schema", []string{"test_1"}, []string{"public.test_2", "dogBreeds"}},
		{"qualified name matches one schema", []string{"public2.test_1"}, []string{"public.test_1", "public.test_2", "dogBreeds"}},
		{"case sensitive", []string{"dogbreeds"}, []string{"public.test_1", "public.test_2", "public2.test_1", "dogBreeds"}},
		{"unknown names are harmless", []string{"nope"}, []string{"public.test_1", "public.test_2", "public2.test_1", "dogBreeds"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.TableNames(FilterIgnored(tables, tt.ignore)))
		})
	}
}

func TestSortTables(t *testing.T) {
	tables := []core.TableRef{
		{Schema: "public2", Name: "a"},
		{Schema: "public", Name: "b"},
		{Schema: "public", Name: "a"},
	}
	SortTables(tables)
	assert.Equal(t, []string{"public.a", "public.b", "public2.a"}, core.TableNames(tables))
}
