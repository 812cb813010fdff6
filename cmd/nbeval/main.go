// Package main provides the CLI entrypoint for nbeval.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nbeval/internal/config"
	"github.com/verte-zerg/nbeval/internal/evalclient"
	"github.com/verte-zerg/nbeval/internal/logging"
	"github.com/verte-zerg/nbeval/internal/model"
	"github.com/verte-zerg/nbeval/internal/render"
	"github.com/verte-zerg/nbeval/internal/store"
	"github.com/verte-zerg/nbeval/internal/tui"
)

const (
	defaultDataset    = "iris"
	defaultValidation = "standard"
	defaultLogLevel   = "info"
	defaultHistoryN   = 20
)

var (
	panelDataset    string
	panelValidation string

	logFile        string
	logLevel       string
	historyEnabled bool

	evalColor bool

	historyLast    int
	historyDataset string
)

type settings struct {
	selection   model.Selection
	logPath     string
	logLevel    string
	history     bool
	historyPath string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nbeval",
		Short:         "Naive Bayes evaluation panel",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPanelCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "diagnostic log file, '-' for stderr (default: XDG state dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&historyEnabled, "history", false, "record successful evaluations in the history database")
	addSelectionFlags(rootCmd)

	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&panelDataset, "dataset", defaultDataset, "dataset (iris, banknote)")
	cmd.Flags().StringVar(&panelValidation, "validation", defaultValidation, "validation type (standard, crossval)")
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dataset", &panelDataset, fileCfg.Panel.Dataset)
	applyStringConfig(cmd, "validation", &panelValidation, fileCfg.Panel.Validation)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyBoolConfig(cmd, "history", &historyEnabled, fileCfg.History.Enabled)

	dataset, err := model.ParseDataset(panelDataset)
	if err != nil {
		return settings{}, fmt.Errorf("--dataset: %w", err)
	}
	validation, err := model.ParseValidationType(panelValidation)
	if err != nil {
		return settings{}, fmt.Errorf("--validation: %w", err)
	}

	s := settings{
		selection:   model.Selection{Dataset: dataset, Validation: validation},
		logPath:     logFile,
		logLevel:    logLevel,
		history:     historyEnabled,
		historyPath: config.DefaultHistoryPath(),
	}
	if s.logPath == "" {
		s.logPath = config.DefaultLogPath()
	}
	if fileCfg.History.Path != nil && *fileCfg.History.Path != "" {
		s.historyPath = *fileCfg.History.Path
	}
	return s, nil
}

func openHistory(s settings) (*store.Store, error) {
	if !s.history {
		return nil, nil
	}
	st, err := store.Open(s.historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return st, nil
}

func closeHistory(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logErrf("failed to close history: %v\n", err)
	}
}

func runPanelCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := logging.Open(s.logPath, s.logLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		if cerr := log.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := openHistory(s)
	if err != nil {
		return err
	}
	defer closeHistory(st)
	var recorder tui.Recorder
	if st != nil {
		recorder = st
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithField("endpoint", evalclient.Endpoint).Info("panel started")
	panel := tui.NewModel(ctx, s.selection, evalclient.New(log), recorder, log)
	program := tea.NewProgram(panel, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run one evaluation and print the result",
		Args:  cobra.NoArgs,
		RunE:  runEvalCmd,
	}
	addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&evalColor, "color", false, "force colored output")
	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := logging.Open(s.logPath, s.logLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		if cerr := log.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()
	entry := log.WithField("run_id", runID)
	res, err := evalclient.New(log).Submit(ctx, s.selection)
	if err != nil {
		entry.WithField("kind", evalclient.Kind(err)).WithError(err).Error("evaluation failed")
		return err
	}
	entry.WithField("accuracy", res.Accuracy).Info("evaluation completed")

	st, err := openHistory(s)
	if err != nil {
		return err
	}
	defer closeHistory(st)
	if st != nil {
		if _, err := st.InsertRun(ctx, model.HistoryEntry{
			RunID:       runID,
			CompletedAt: time.Now(),
			Selection:   s.selection,
			Result:      res,
		}); err != nil {
			entry.WithError(err).Warn("failed to record run")
		}
	}

	out := cmd.OutOrStdout()
	if err := render.Report(out, s.selection, res, render.ShouldUseColor(out, evalColor)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded evaluations",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryN, "limit to last N runs (0 for all)")
	cmd.Flags().StringVar(&historyDataset, "dataset", "", "dataset filter")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Last: historyLast}
	if historyDataset != "" {
		d, err := model.ParseDataset(historyDataset)
		if err != nil {
			return fmt.Errorf("--dataset: %w", err)
		}
		filter.Dataset = &d
	}

	path := config.DefaultHistoryPath()
	if fileCfg.History.Path != nil && *fileCfg.History.Path != "" {
		path = *fileCfg.History.Path
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logErrln("No history yet. Run with --history to record evaluations.")
			return nil
		}
		return fmt.Errorf("failed to stat history: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closeHistory(st)

	entries, err := st.ListRuns(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		logErrln("No recorded evaluations match.")
		return nil
	}
	for _, line := range render.HistoryLines(entries) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# nbeval configuration
# Uncomment a value to enable it. CLI flags override config values.

[panel]
# dataset = %q         # Initial dataset (iris, banknote)
# validation = %q  # Initial validation type (standard, crossval)

[log]
# file = %q
# level = %q           # debug, info, warn, error

[history]
# enabled = false          # Record successful evaluations
# path = %q
`,
		defaultDataset,
		defaultValidation,
		config.DefaultLogPath(),
		defaultLogLevel,
		config.DefaultHistoryPath(),
	)
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
