package adapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// RowCount, listing and statement helpers.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Conn    core.Conn
	Dialect *core.DialectConfig
	Logger  *slog.Logger
}

// NewBase binds a BaseSQLAdapter to conn. A nil logger uses a discard logger.
func NewBase(conn core.Conn, d *core.DialectConfig, logger *slog.Logger) BaseSQLAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return BaseSQLAdapter{
		DB:      conn.DB,
		Conn:    conn,
		Dialect: d,
		Logger:  logger.With(slog.String("dialect", d.Name)),
	}
}

// DialectName returns the canonical dialect identifier.
func (b *BaseSQLAdapter) DialectName() string {
	return b.Dialect.Name
}

// DialectConfig returns the static dialect configuration.
func (b *BaseSQLAdapter) DialectConfig() *core.DialectConfig {
	return b.Dialect
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// RowCount returns SELECT COUNT(*) for the table.
func (b *BaseSQLAdapter) RowCount(ctx context.Context, table core.TableRef) (int64, error) {
	if b.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	query := "SELECT COUNT(*) FROM " + table.Quoted(b.Dialect) //nolint:gosec // identifiers are quoted
	var count int64
	if err := b.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// QueryTables runs a catalog query and scans each row into a TableRef.
// Dialects that qualify tables must select (schema, name); others select name only.
func (b *BaseSQLAdapter) QueryTables(ctx context.Context, query string, args ...any) ([]core.TableRef, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []core.TableRef
	for rows.Next() {
		var ref core.TableRef
		if b.Dialect.QualifyTables {
			err = rows.Scan(&ref.Schema, &ref.Name)
		} else {
			err = rows.Scan(&ref.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// ExecEach runs one statement per table, in order, stopping at the first failure.
// stmt is a prefix such as "DROP TABLE" or "DELETE FROM".
func (b *BaseSQLAdapter) ExecEach(ctx context.Context, q Execer, stmt string, tables []core.TableRef) error {
	for _, t := range tables {
		query := stmt + " " + t.Quoted(b.Dialect)
		b.Logger.Debug("executing", slog.String("sql", query))
		if _, err := q.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("%s %s failed: %w", strings.ToLower(stmt), t, err)
		}
	}
	return nil
}

// InSession pins one pooled connection, runs setup on it, then runs fn in a
// transaction on that connection. teardown runs after the transaction ends,
// on success and on failure, with cancellation detached so a cancelled ctx
// still restores the session. If teardown fails the connection is discarded
// instead of being returned to the pool with setup still in effect.
// Empty setup or teardown statements are skipped.
func (b *BaseSQLAdapter) InSession(ctx context.Context, setup, teardown string, fn func(tx *sql.Tx) error) (err error) {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	conn, err := b.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if setup != "" {
		if _, err := conn.ExecContext(ctx, setup); err != nil {
			return fmt.Errorf("failed to execute %q: %w", setup, err)
		}
		if teardown != "" {
			defer func() {
				if terr := b.restoreSession(ctx, conn, teardown); terr != nil && err == nil {
					err = terr
				}
			}()
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// restoreSession runs teardown on conn. On failure the connection is marked
// bad so database/sql closes it rather than reusing it.
func (b *BaseSQLAdapter) restoreSession(ctx context.Context, conn *sql.Conn, teardown string) error {
	_, err := conn.ExecContext(context.WithoutCancel(ctx), teardown)
	if errors.Is(err, sql.ErrConnDone) {
		// A cancelled transaction already discarded the connection and its session.
		return nil
	}
	if err != nil {
		b.Logger.Warn("discarding connection after failed session restore",
			slog.String("sql", teardown),
			slog.String("error", err.Error()))
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		return fmt.Errorf("failed to execute %q: %w", teardown, err)
	}
	return nil
}

// DeleteInPasses issues DELETE FROM for every table. A table whose delete
// fails (typically a foreign key still referencing it) is retried in the next
// pass. A pass that deletes nothing returns the last error seen.
func (b *BaseSQLAdapter) DeleteInPasses(ctx context.Context, tables []core.TableRef) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	pending := tables
	for pass := 1; len(pending) > 0; pass++ {
		var deferred []core.TableRef
		var lastErr error
		for _, t := range pending {
			query := "DELETE FROM " + t.Quoted(b.Dialect)
			if _, err := b.DB.ExecContext(ctx, query); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				b.Logger.Debug("delete deferred",
					slog.String("table", t.String()),
					slog.Int("pass", pass),
					slog.String("error", err.Error()))
				deferred = append(deferred, t)
				lastErr = fmt.Errorf("delete from %s failed: %w", t, err)
			}
		}
		if len(deferred) == len(pending) {
			return lastErr
		}
		pending = deferred
	}
	return nil
}

// FilterIgnored removes tables named in ignore. An entry matches either the
// qualified name (public.users) or the bare table name (users).
func FilterIgnored(tables []core.TableRef, ignore []string) []core.TableRef {
	if len(ignore) == 0 {
		return tables
	}
	filtered := make([]core.TableRef, 0, len(tables))
	for _, t := range tables {
		if slices.Contains(ignore, t.String()) || slices.Contains(ignore, t.Name) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// SortTables orders tables by qualified name.
func SortTables(tables []core.TableRef) {
	slices.SortFunc(tables, func(a, b core.TableRef) int {
		return strings.Compare(a.String(), b.String())
	})
}
