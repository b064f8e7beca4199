package commands

import (
	"fmt"
	"os"
	"path/filepath"

	intconfig "github.com/leapstack-labs/dbcleaner/internal/config"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var dialect string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter dbcleaner.yaml",
		Long: `Write a commented dbcleaner.yaml for the chosen dialect.

The file holds a target section, clean defaults that keep common migration
tables, and a ci environment that reads the connection from DATABASE_URL.`,
		Example: `  # SQLite config in the current directory
  dbcleaner init

  # PostgreSQL config in a project directory
  dbcleaner init --dialect postgres ./api

  # Overwrite an existing config
  dbcleaner init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, dialect, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&dialect, "dialect", core.DialectSQLite, "Dialect of the generated target (mysql|postgresql|sqlite3)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, dialect string, force bool) error {
	name, err := templateName(dialect)
	if err != nil {
		return err
	}

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	files, err := copyTemplate(name, dir, force)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	w := cmd.OutOrStdout()
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "  created %s\n", filepath.Join(dir, f))
	}
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "dbcleaner initialized for %s\n", name)
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Next steps:")
	_, _ = fmt.Fprintln(w, "  1. Point target at your test database")
	_, _ = fmt.Fprintln(w, "  2. Run 'dbcleaner doctor' to check the connection")
	_, _ = fmt.Fprintln(w, "  3. Run 'dbcleaner clean' between test runs")

	return nil
}
