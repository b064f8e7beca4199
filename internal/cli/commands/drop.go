package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/spf13/cobra"
)

// NewDropCommand creates the drop command.
func NewDropCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop [table...]",
		Short: "Drop tables from the target database",
		Long: `Drop the named tables, or every table in scope when none are named.

This removes the tables themselves, not just their rows. It refuses to run
without --yes.`,
		Example: `  # Drop every table in scope
  dbcleaner drop --yes

  # Drop two tables
  dbcleaner drop --yes public.sessions public.events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrop(cmd, args, yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping tables")
	cmd.Flags().StringSlice("ignore", nil, "Table to keep when dropping everything (repeatable)")
	cmd.Flags().StringSlice("schema", nil, "Schema to drop from (repeatable, PostgreSQL; default public)")

	return cmd
}

func runDrop(cmd *cobra.Command, args []string, yes bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	var tables []core.TableRef
	if len(args) > 0 {
		for _, arg := range args {
			tables = append(tables, core.ParseTableRef(arg))
		}
	} else {
		tables, err = cmdCtx.Adapter.ListTables(ctx, cmdCtx.Cfg.Clean.ListOptions())
		if err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "No tables to drop")
		return nil
	}

	names := core.TableNames(tables)
	if !yes {
		return fmt.Errorf("refusing to drop %d tables (%s) without --yes", len(tables), strings.Join(names, ", "))
	}

	if err := cmdCtx.Adapter.DropTables(ctx, tables); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Dropped %d tables\n", len(tables))
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
