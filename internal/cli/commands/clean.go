package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leapstack-labs/dbcleaner/internal/cli/config"
	"github.com/leapstack-labs/dbcleaner/pkg/cleaner"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/spf13/cobra"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Empty every table of the target database",
		Long: `Empty every table of the target database.

Tables are truncated by default (identity counters restart). Use --mode delete
to issue DELETE FROM instead. Tables named with --ignore keep their rows; an
entry matches either a qualified name (public.users) or a bare table name.`,
		Example: `  # Truncate every table of the configured target
  dbcleaner clean

  # Delete rows from a SQLite file, keeping the migrations table
  dbcleaner clean --dialect sqlite --path test.db --mode delete --ignore schema_migrations

  # Clean two PostgreSQL schemas
  dbcleaner clean --dsn postgres://localhost/app_test --dialect postgres --schema public --schema audit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, dryRun)
		},
	}

	cmd.Flags().String("mode", "", "Clean mode (truncate|delete)")
	cmd.Flags().StringSlice("ignore", nil, "Table to leave untouched (repeatable)")
	cmd.Flags().StringSlice("schema", nil, "Schema to clean (repeatable, PostgreSQL; default public)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the tables that would be cleaned without changing them")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(core.ModeTruncate), string(core.ModeDelete)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// cleanResult is the JSON shape of a clean run.
type cleanResult struct {
	Dialect  string   `json:"dialect"`
	Mode     string   `json:"mode"`
	DryRun   bool     `json:"dry_run"`
	Tables   []string `json:"tables"`
	Duration string   `json:"duration"`
}

func runClean(cmd *cobra.Command, dryRun bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	opts := cmdCtx.Cfg.Clean
	start := time.Now()

	var tables []core.TableRef
	if dryRun {
		tables, err = cmdCtx.Adapter.ListTables(ctx, opts.ListOptions())
	} else {
		tables, err = cleaner.NewWithAdapter(cmdCtx.Adapter, cmdCtx.Logger).CleanTables(ctx, opts)
	}
	if err != nil {
		return err
	}

	result := cleanResult{
		Dialect:  cmdCtx.Adapter.DialectName(),
		Mode:     string(opts.Mode),
		DryRun:   dryRun,
		Tables:   core.TableNames(tables),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	if result.Tables == nil {
		result.Tables = []string{}
	}

	w := cmd.OutOrStdout()
	if cmdCtx.Cfg.OutputFormat == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	verb := "Cleaned"
	if dryRun {
		verb = "Would clean"
	}
	_, _ = fmt.Fprintf(w, "%s %d tables (%s, %s)\n", verb, len(tables), result.Dialect, result.Mode)
	if dryRun || cmdCtx.Cfg.Verbose {
		for _, name := range result.Tables {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}
