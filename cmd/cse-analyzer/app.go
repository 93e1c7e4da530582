package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"CSEAnalyzer/internal/breakeven"
	"CSEAnalyzer/internal/config"
	"CSEAnalyzer/internal/fundamental"
	"CSEAnalyzer/internal/recorder"
	"CSEAnalyzer/internal/strategy"
	"CSEAnalyzer/internal/technical"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App carries the loaded configuration and shared flags for all commands.
type App struct {
	ConfigPath string
	JSON       bool
	Config     *config.Config
	Log        zerolog.Logger
}

func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cse-analyzer",
		Short: "Fee-aware stock analysis for the Colombo Stock Exchange",
		Long: `Compute CSE transaction fees, break-even and target prices, and score
stocks on fundamentals, technical indicators and risk.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&app.JSON, "json", false, "print results as JSON")

	addFeeCommands(root, app)
	addAnalysisCommands(root, app)
	root.AddCommand(newHistoryCmd(app))
	root.AddCommand(newServeCmd(app))
	return root
}

func (a *App) load(logOut io.Writer) error {
	path := a.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	a.Config = cfg
	a.Log = newLogger(cfg.LogLevel, logOut)
	a.Log.Debug().Str("config", path).Msg("configuration loaded")
	return nil
}

func newLogger(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func (a *App) calculator() (*breakeven.Calculator, error) {
	schedule, err := a.Config.FeeSchedule()
	if err != nil {
		return nil, err
	}
	return breakeven.NewCalculator(schedule), nil
}

func (a *App) engine() (*strategy.Engine, error) {
	fa, err := fundamental.NewAnalyzer(a.Config.Fundamental, a.Log)
	if err != nil {
		return nil, err
	}
	ta, err := technical.NewAnalyzer(a.Config.Technical, a.Log)
	if err != nil {
		return nil, err
	}
	return strategy.NewEngine(a.Config.Strategy, fa, ta, a.Log)
}

// recorder opens the SQLite history, or a no-op recorder when no path is set.
func (a *App) recorder() (recorder.Recorder, error) {
	if a.Config.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(a.Config.Database.SQLitePath, a.Log)
}

// print writes v as indented JSON when --json is set, otherwise the text.
func (a *App) print(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if a.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := io.WriteString(out, text)
	return err
}
