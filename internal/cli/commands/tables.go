package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/dbcleaner/internal/cli/config"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var withCounts bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables a clean would empty",
		Long: `List the tables in scope of a clean: every user table in the configured
schemas, minus ignored tables. With --counts, row counts are fetched
concurrently (see --count-concurrency).`,
		Example: `  # List tables
  dbcleaner tables

  # List tables with row counts as JSON
  dbcleaner tables --counts -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTables(cmd, withCounts)
		},
	}

	cmd.Flags().BoolVar(&withCounts, "counts", false, "Include row counts")
	cmd.Flags().StringSlice("ignore", nil, "Table to leave out (repeatable)")
	cmd.Flags().StringSlice("schema", nil, "Schema to list (repeatable, PostgreSQL; default public)")
	cmd.Flags().Int("count-concurrency", 0, "Row count queries in flight at once")

	return cmd
}

// tableRow is the JSON shape of one listed table.
type tableRow struct {
	Table string `json:"table"`
	Rows  *int64 `json:"rows,omitempty"`
}

func runTables(cmd *cobra.Command, withCounts bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	tables, err := cmdCtx.Adapter.ListTables(ctx, cmdCtx.Cfg.Clean.ListOptions())
	if err != nil {
		return err
	}

	rows := make([]tableRow, len(tables))
	for i, t := range tables {
		rows[i] = tableRow{Table: t.String()}
	}

	if withCounts {
		counts, err := adapter.RowCounts(ctx, cmdCtx.Adapter, tables, cmdCtx.Cfg.CountConcurrency)
		if err != nil {
			return err
		}
		for i := range counts {
			rows[i].Rows = &counts[i].Rows
		}
	}

	w := cmd.OutOrStdout()
	if cmdCtx.Cfg.OutputFormat == config.OutputJSON {
		return renderTablesJSON(w, rows)
	}
	return renderTablesTable(w, rows, withCounts)
}

func renderTablesTable(w io.Writer, rows []tableRow, withCounts bool) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tables)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Table"}
	if withCounts {
		header = append(header, "Rows")
		t.SetColumnConfigs([]table.ColumnConfig{{Name: "Rows", Align: text.AlignRight}})
	}
	t.AppendHeader(header)

	var total int64
	for _, r := range rows {
		row := table.Row{r.Table}
		if withCounts && r.Rows != nil {
			row = append(row, *r.Rows)
			total += *r.Rows
		}
		t.AppendRow(row)
	}
	if withCounts {
		t.AppendFooter(table.Row{"Total", total})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d tables)\n", len(rows))
	return nil
}

func renderTablesJSON(w io.Writer, rows []tableRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
