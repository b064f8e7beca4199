package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/leapstack-labs/dbcleaner/pkg/adapters/all" // register dialects for config validation
)

func TestNewCleanCommand(t *testing.T) {
	cmd := NewCleanCommand()

	assert.Equal(t, "clean", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"mode", "ignore", "schema", "dry-run"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewTablesCommand(t *testing.T) {
	cmd := NewTablesCommand()

	assert.Equal(t, "tables", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Note: --output flag is a global persistent flag on root command, not local to tables
	flags := []string{"counts", "ignore", "schema", "count-concurrency"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewDropCommand(t *testing.T) {
	cmd := NewDropCommand()

	assert.Equal(t, "drop [table...]", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("yes"), "drop must require confirmation")
}
