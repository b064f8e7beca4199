package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/dbcleaner/internal/cli/config"
	"github.com/leapstack-labs/dbcleaner/pkg/adapter"
	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Conn    core.Conn
	Adapter adapter.Adapter
}

// NewCommandContext validates the loaded config, opens the target database
// and binds its adapter.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg, err := config.GetConfig(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := config.GetLogger(cmd.Context())

	conn, err := adapter.Open(cmd.Context(), cfg.Target.ConnConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to target: %w", err)
	}

	a, err := adapter.New(conn, logger)
	if err != nil {
		_ = conn.DB.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = conn.DB.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Conn:    conn,
		Adapter: a,
	}, cleanup, nil
}
