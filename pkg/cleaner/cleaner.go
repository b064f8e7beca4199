// Package cleaner empties every table of a database between test runs.
//
// A Cleaner resolves CleanOptions against their defaults, asks the dialect's
// table inventory for the tables in scope and then truncates or deletes
// them. Tables are emptied independently: there is no ordering guarantee
// and no rollback of tables already cleaned when a later one fails.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
)

// InvalidModeError is returned when CleanOptions.Mode is not a known mode.
type InvalidModeError struct {
	Mode core.Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid clean mode %q (want %q or %q)", e.Mode, core.ModeTruncate, core.ModeDelete)
}

// Cleaner empties the tables reachable through one adapter.
type Cleaner struct {
	adapter adapter.Adapter
	logger  *slog.Logger
}

// New creates a Cleaner for conn, selecting the adapter by conn.Dialect.
// Returns *adapter.UnsupportedDialectError for unknown dialects.
func New(conn core.Conn, logger *slog.Logger) (*Cleaner, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a, err := adapter.New(conn, logger)
	if err != nil {
		return nil, err
	}
	return NewWithAdapter(a, logger), nil
}

// NewWithAdapter creates a Cleaner around an existing adapter.
func NewWithAdapter(a adapter.Adapter, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cleaner{adapter: a, logger: logger}
}

// Adapter returns the table inventory the Cleaner works through.
func (c *Cleaner) Adapter() adapter.Adapter {
	return c.adapter
}

// Clean empties every non-ignored table in scope.
func (c *Cleaner) Clean(ctx context.Context, opts core.CleanOptions) error {
	_, err := c.CleanTables(ctx, opts)
	return err
}

// CleanTables empties every non-ignored table in scope and returns the
// tables it emptied.
func (c *Cleaner) CleanTables(ctx context.Context, opts core.CleanOptions) ([]core.TableRef, error) {
	opts = opts.WithDefaults()
	if !opts.Mode.Valid() {
		return nil, &InvalidModeError{Mode: opts.Mode}
	}

	start := time.Now()
	tables, err := c.adapter.ListTables(ctx, opts.ListOptions())
	if err != nil {
		return nil, err
	}

	logger := c.logger.With(
		slog.String("dialect", c.adapter.DialectName()),
		slog.String("mode", string(opts.Mode)))

	if len(tables) == 0 {
		logger.Debug("no tables to clean")
		return nil, nil
	}

	switch opts.Mode {
	case core.ModeDelete:
		err = c.adapter.DeleteTables(ctx, tables)
	default:
		err = c.adapter.TruncateTables(ctx, tables)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clean tables: %w", err)
	}

	logger.Info("cleaned tables",
		slog.Int("tables", len(tables)),
		slog.Duration("duration", time.Since(start)))
	return tables, nil
}

// Clean creates a Cleaner for conn and runs it once.
func Clean(ctx context.Context, conn core.Conn, opts core.CleanOptions, logger *slog.Logger) error {
	c, err := New(conn, logger)
	if err != nil {
		return err
	}
	return c.Clean(ctx, opts)
}
