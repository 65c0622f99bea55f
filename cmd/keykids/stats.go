package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keykids/internal/config"
	"github.com/verte-zerg/keykids/internal/logging"
	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/stats"
	"github.com/verte-zerg/keykids/internal/statsui"
	"github.com/verte-zerg/keykids/internal/store"
)

const plainWidth = 80

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig(cmd)
	if err != nil {
		return err
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

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return renderPlainReport(cmd.OutOrStdout(), report, cfg.CurveWindow, outputWidth(cmd.OutOrStdout()))
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig(cmd *cobra.Command) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}
	if cmd.Flags().Changed("level") {
		id := statsLevel
		cfg.LevelID = &id
	}
	return cfg, nil
}

func renderPlainReport(w io.Writer, report stats.Report, window, width int) error {
	if err := stats.RenderSummary(w, report.Results); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Results, window, width-12); err != nil {
		return err
	}
	if err := stats.RenderErrorTable(w, report.ErrorStats); err != nil {
		return err
	}
	return stats.RenderAchievements(w, report.Achievements)
}

func outputWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return plainWidth
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return plainWidth
	}
	return width
}
