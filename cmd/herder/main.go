// herder drives tile-grid herding simulations from the command line.
//
// Usage:
//
//	herder list                  - List available scenarios
//	herder run <scenario>        - Run a scenario headless and record the run
//	herder history [scenario]    - Show recorded runs
//	herder level <file>          - Inspect a level file
//
// Global flags:
//
//	--tick-rate <rate>  - Simulation ticks per second (default: from config)
//	--seed <value>      - RNG seed for reproducible runs
//	--db <path>         - Run history database (default: ~/.herder/runs.db)
//	--config <path>     - Config file (yaml or toml)
//	--log-level <level> - debug, info, warn or error
//	--log-format <fmt>  - auto, text, logfmt or json
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tile-herder/internal/config"
	"github.com/vovakirdan/tile-herder/internal/games/stage"

	// Import scenarios to register them
	_ "github.com/vovakirdan/tile-herder/internal/games/herd"
	_ "github.com/vovakirdan/tile-herder/internal/games/sandbox"
)

var (
	// Global flags
	flagTickRate  int
	flagSeed      int64
	flagDBPath    string
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	appConfig config.Config
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "herder",
	Short: "Tile Herder - lead a rabbit across a tile grid",
	Long: `Tile Herder simulates entities moving on a tile grid: a player you
steer, a rabbit that follows, and patrolling, chasing and path-finding
actors. Runs are headless and recorded to a local database.

Available commands:
  list     - Show all available scenarios
  run      - Run a scenario with scripted input
  history  - View recorded runs
  level    - Inspect a level file

Examples:
  herder list
  herder run herd --ticks 1200 --input "E:40,S:20"
  herder run sandbox --level ./levels/yard.toml --snapshot
  herder history herd --best`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagTickRate, "tick-rate", 0, "Ticks per second (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run history database (default ~/.herder/runs.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: auto, text, logfmt, json")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(levelCmd)
}

// setup loads the config and builds the shared logger before any command.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	format := cfg.Log.Format
	if flagLogFormat != "" {
		format = flagLogFormat
	}

	logger, err = newLogger(level, format, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return err
	}

	stage.SetConfigPath(flagConfig)
	stage.SetLogger(logger)
	return nil
}

// newLogger builds the stderr logger. "auto" picks text on a terminal and
// logfmt otherwise.
func newLogger(level, format string, tty bool) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var formatter log.Formatter
	switch strings.ToLower(format) {
	case "", "auto":
		formatter = log.LogfmtFormatter
		if tty {
			formatter = log.TextFormatter
		}
	case "text":
		formatter = log.TextFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	case "json":
		formatter = log.JSONFormatter
	default:
		return nil, fmt.Errorf("invalid log format %q (want auto, text, logfmt or json)", format)
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "herder",
		Level:           lvl,
		Formatter:       formatter,
	}), nil
}

// dbPath resolves the run history location: flag, then config, then the
// data directory.
func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	if appConfig.Storage.Path != "" {
		return appConfig.Storage.Path
	}
	return filepath.Join(config.DataDir(), "runs.db")
}
