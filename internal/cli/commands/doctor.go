package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dbcleaner/internal/cli/config"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "error"
	StatusSkip = "skip"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the target database can be cleaned",
		Long: `Run a series of checks against the configured target:

- Configuration: a config file is found and the target is valid
- Database: the target is reachable, has tables in scope and can be counted

A failed check skips the checks that depend on it. The command exits
non-zero when any check fails.`,
		Example: `  # Check the configured target
  dbcleaner doctor

  # Check a CI environment, as JSON
  dbcleaner doctor --env ci -o json`,
		RunE: runDoctor,
	}
	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile string        `json:"config_file,omitempty"`
	Dialect    string        `json:"dialect,omitempty"`
	Checks     []HealthCheck `json:"checks"`
	Failures   int           `json:"failures"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := config.GetConfig(cmd.Context())
	if err != nil {
		return err
	}

	out := buildDoctorOutput(cmd, cfg)

	w := cmd.OutOrStdout()
	if cfg.OutputFormat == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		renderDoctorText(w, out)
	}

	if out.Failures > 0 {
		return fmt.Errorf("doctor found %d failing checks", out.Failures)
	}
	return nil
}

func buildDoctorOutput(cmd *cobra.Command, cfg *config.Config) *DoctorOutput {
	ctx := cmd.Context()
	logger := config.GetLogger(ctx)
	out := &DoctorOutput{ConfigFile: config.GetConfigFileUsed()}
	if cfg.Target != nil {
		out.Dialect = cfg.Target.Dialect
	}

	add := func(group, name, status, detail string) {
		out.Checks = append(out.Checks, HealthCheck{Name: name, Group: group, Status: status, Detail: detail})
	}
	skipRest := func(names ...string) {
		for _, name := range names {
			add("database", name, StatusSkip, "")
		}
	}

	if out.ConfigFile != "" {
		add("configuration", "config file", StatusPass, out.ConfigFile)
	} else {
		add("configuration", "config file", StatusWarn, "no dbcleaner.yaml found, using flags and environment only")
	}

	if err := cfg.Validate(); err != nil {
		add("configuration", "target", StatusFail, firstLine(err.Error()))
		skipRest("connection", "tables", "row counts")
		return finishDoctor(out)
	}
	add("configuration", "target", StatusPass, fmt.Sprintf("%s, mode %s", cfg.Target.Dialect, cfg.Clean.Mode))

	conn, err := adapter.Open(ctx, cfg.Target.ConnConfig(), logger)
	if err != nil {
		add("database", "connection", StatusFail, firstLine(err.Error()))
		skipRest("tables", "row counts")
		return finishDoctor(out)
	}
	defer func() { _ = conn.DB.Close() }()
	add("database", "connection", StatusPass, "ping ok")

	a, err := adapter.New(conn, logger)
	if err != nil {
		add("database", "tables", StatusFail, firstLine(err.Error()))
		skipRest("row counts")
		return finishDoctor(out)
	}

	tables, err := a.ListTables(ctx, cfg.Clean.ListOptions())
	switch {
	case err != nil:
		add("database", "tables", StatusFail, firstLine(err.Error()))
		skipRest("row counts")
		return finishDoctor(out)
	case len(tables) == 0:
		add("database", "tables", StatusWarn, "no tables in scope")
	default:
		add("database", "tables", StatusPass, fmt.Sprintf("%d tables in scope", len(tables)))
	}

	counts, err := adapter.RowCounts(ctx, a, tables, cfg.CountConcurrency)
	if err != nil {
		add("database", "row counts", StatusFail, firstLine(err.Error()))
		return finishDoctor(out)
	}
	var total int64
	for _, c := range counts {
		total += c.Rows
	}
	add("database", "row counts", StatusPass, fmt.Sprintf("%d rows", total))

	return finishDoctor(out)
}

// finishDoctor orders checks by group, keeping run order within a group, and tallies failures.
func finishDoctor(out *DoctorOutput) *DoctorOutput {
	sort.SliceStable(out.Checks, func(i, j int) bool {
		return out.Checks[i].Group < out.Checks[j].Group
	})
	out.Failures = 0
	for _, c := range out.Checks {
		if c.Status == StatusFail {
			out.Failures++
		}
	}
	return out
}

func renderDoctorText(w io.Writer, out *DoctorOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Group", "Check", "Status", "Detail"})

	titleCaser := cases.Title(language.English)
	currentGroup := ""
	for _, c := range out.Checks {
		group := ""
		if c.Group != currentGroup {
			currentGroup = c.Group
			group = titleCaser.String(c.Group)
		}
		t.AppendRow(table.Row{group, c.Name, statusLabel(c.Status), c.Detail})
	}
	t.Render()

	if out.Failures > 0 {
		_, _ = fmt.Fprintf(w, "%d failing checks\n", out.Failures)
	} else {
		_, _ = fmt.Fprintln(w, "All checks passed")
	}
}

func statusLabel(status string) string {
	switch status {
	case StatusPass:
		return "ok"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "-"
	}
}

func firstLine(s string) string {
	for i := range len(s) {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
