// Package main provides the CLI entrypoint for keykids.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keykids/internal/config"
	"github.com/verte-zerg/keykids/internal/generator"
	"github.com/verte-zerg/keykids/internal/logging"
	"github.com/verte-zerg/keykids/internal/model"
	"github.com/verte-zerg/keykids/internal/stats"
	"github.com/verte-zerg/keykids/internal/store"
	"github.com/verte-zerg/keykids/internal/tui"
	"github.com/verte-zerg/keykids/internal/wordlist"
)

const (
	defaultMode              = string(model.ModeLesson)
	defaultSeconds           = 60
	defaultDifficulty        = 1
	defaultOutlierMs         = 2000
	defaultGenerateTimeoutMs = 1500
	defaultCurveWindow       = 5
	defaultLogLevel          = "info"
)

var (
	practiceLevel          int
	practiceMode           string
	practiceSeconds        int
	practiceDifficulty     int
	practiceWordList       string
	scoringDecayRate       float64
	scoringOutlierMs       int
	scoringGenerateTimeout int
	logLevel               string
	statsLevel             int
	statsSince             string
	statsLast              int
	statsCurveWindow       int
	statsPlain             bool
	resetConfirmed         bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keykids",
		Short:         "Typing tutor for kids",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceLevel, "level", 0, "level id (default: highest unlocked)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "lesson, timed or errors")
	rootCmd.Flags().IntVar(&practiceSeconds, "seconds", defaultSeconds, "countdown length for timed mode")
	rootCmd.Flags().IntVar(&practiceDifficulty, "difficulty", defaultDifficulty, "text length multiplier (1-3)")
	rootCmd.Flags().StringVar(&practiceWordList, "word-list", "", "extra words for error drills, one per line")
	rootCmd.Flags().Float64Var(&scoringDecayRate, "decay-rate", stats.DefaultDecayRate, "share of correct presses that forgive an old error (0-1)")
	rootCmd.Flags().IntVar(&scoringOutlierMs, "outlier-ms", defaultOutlierMs, "keystroke gaps at or above this are left out of rhythm")
	rootCmd.Flags().IntVar(&scoringGenerateTimeout, "generate-timeout", defaultGenerateTimeoutMs, "milliseconds to wait for new text before using a fallback")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPracticeConfig(cmd, fileCfg)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	level, err := parseLogLevel()
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(config.DefaultLogPath(), level)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			// Best-effort close for the log file.
			_ = cerr
		}
	}()

	catalog, err := config.LoadCatalog(config.DefaultLevelsPath())
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}

	var words []string
	if cfg.WordListPath != "" {
		words, err = wordlist.LoadWords(cfg.WordListPath)
		if err != nil {
			return fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
		}
	}

	st, err := store.Open(config.DefaultDBPath(), store.WithLogger(logger))
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
	lvl, err := catalog.Resolve(profile, cfg.Mode, cfg.LevelID)
	if err != nil {
		if errors.Is(err, config.ErrLevelLocked) {
			return fmt.Errorf("%w (earn two stars on the level before it; see: keykids levels)", err)
		}
		return err
	}
	if cfg.Mode == model.ModeErrors && len(stats.RankErrorChars(profile.ErrorStats)) == 0 {
		logErrln("no tricky keys recorded yet; the drill uses the level text")
	}

	logger.Info("starting practice", "level", lvl.ID, "mode", string(cfg.Mode))
	m := tui.NewModel(tui.Options{
		Config:  cfg,
		Level:   lvl,
		Catalog: catalog,
		Profile: profile,
		Store:   st,
		Source:  generator.New(words),
		Logger:  logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func applyPracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyIntConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "seconds", &practiceSeconds, fileCfg.Practice.Seconds)
	applyIntConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyStringConfig(cmd, "word-list", &practiceWordList, fileCfg.Practice.WordList)
	applyFloatConfig(cmd, "decay-rate", &scoringDecayRate, fileCfg.Scoring.DecayRate)
	applyIntConfig(cmd, "outlier-ms", &scoringOutlierMs, fileCfg.Scoring.OutlierMs)
	applyIntConfig(cmd, "generate-timeout", &scoringGenerateTimeout, fileCfg.Scoring.GenerateTimeoutMs)
}

func buildConfig() (model.Config, error) {
	mode, ok := model.ParseMode(practiceMode)
	if !ok {
		return model.Config{}, fmt.Errorf("--mode must be lesson, timed or errors")
	}
	return model.Config{
		LevelID:         practiceLevel,
		Mode:            mode,
		Seconds:         practiceSeconds,
		Difficulty:      practiceDifficulty,
		DecayRate:       scoringDecayRate,
		OutlierMs:       scoringOutlierMs,
		GenerateTimeout: time.Duration(scoringGenerateTimeout) * time.Millisecond,
		WordListPath:    expandHome(practiceWordList),
	}, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.LevelID < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	if cfg.Mode == model.ModeTimed && cfg.Seconds <= 0 {
		return fmt.Errorf("--seconds must be > 0")
	}
	if cfg.Difficulty < 1 || cfg.Difficulty > 3 {
		return fmt.Errorf("--difficulty must be between 1 and 3")
	}
	if cfg.DecayRate < 0 || cfg.DecayRate > 1 {
		return fmt.Errorf("--decay-rate must be between 0 and 1")
	}
	if cfg.OutlierMs <= 0 {
		return fmt.Errorf("--outlier-ms must be > 0")
	}
	if cfg.GenerateTimeout <= 0 {
		return fmt.Errorf("--generate-timeout must be > 0")
	}
	return nil
}

func parseLogLevel() (slog.Level, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return level, fmt.Errorf("invalid --log-level: %w", err)
	}
	return level, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetConfirmed, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetConfirmed {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Erase all sessions, stars and badges? Type yes to continue: ")
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Nothing was erased.")
			return err
		}
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
	if err := st.Reset(context.Background()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Progress erased. Level 1 is waiting!")
	return err
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keykids configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# level = 1                  # Level id (default: highest unlocked)
# mode = %q              # lesson, timed or errors
# seconds = %d               # Countdown length for timed mode
# difficulty = %d             # Text length multiplier (1-3)
# word-list = "~/words.txt"  # Extra words for error drills

[scoring]
# decay-rate = %.2f          # Share of correct presses that forgive an old error
# outlier-ms = %d          # Gaps at or above this are left out of rhythm
# generate-timeout-ms = %d # Wait for new text before using a fallback
`,
		defaultMode,
		defaultSeconds,
		defaultDifficulty,
		stats.DefaultDecayRate,
		defaultOutlierMs,
		defaultGenerateTimeoutMs,
	)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
