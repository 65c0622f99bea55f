package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keykids/internal/config"
	"github.com/verte-zerg/keykids/internal/logging"
	"github.com/verte-zerg/keykids/internal/stats"
	"github.com/verte-zerg/keykids/internal/store"
)

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List levels and progress",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	catalog, err := config.LoadCatalog(config.DefaultLevelsPath())
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	level, err := parseLogLevel()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath(), store.WithLogger(logging.New(os.Stderr, level)))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	profile, err := st.LoadProfile(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := stats.RenderLevels(cmd.OutOrStdout(), catalog.Levels(), profile); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
