// mzpatch applies translation patch bundles to RPG Maker MV/MZ games.
//
// Usage:
//
//	mzpatch patch <game-dir> <bundle>   - Apply a patch bundle
//	mzpatch restore <game-dir>          - Undo every patch applied to a game
//	mzpatch history [game-dir]          - Show recorded patch runs
//	mzpatch passes                      - List the patch passes
//	mzpatch schema                      - Print the JSON Schema of config.json
//	mzpatch wrap --width N <text>       - Preview how text is wrapped
//
// Global flags:
//
//	--config <path>     - Tool config file (default: ~/.mzpatch/config.yaml)
//	--db <path>         - History database (default: ~/.mzpatch/history.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/config"
	"github.com/vovakirdan/mzpatch/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mzpatch",
	Short: "mzpatch - Apply translation patches to RPG Maker MV/MZ games",
	Long: `mzpatch applies a downloaded translation bundle to an installed
RPG Maker MV or MZ game. Original files are backed up on the first run, so
patching again or restoring is always done from pristine files.

Available commands:
  patch    - Apply a patch bundle to a game
  restore  - Restore a game's original files
  history  - Show recorded patch runs
  passes   - List the patch passes and the config version enabling them
  schema   - Print the JSON Schema of a bundle's config.json
  wrap     - Preview how text is wrapped

Examples:
  mzpatch patch ~/Games/HeroQuest ./heroquest-fr.zip
  mzpatch patch ~/Games/HeroQuest ./heroquest-fr --dry-run
  mzpatch restore ~/Games/HeroQuest
  mzpatch history`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to tool config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to history database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(passesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(wrapCmd)
}

// loadSettings loads the tool config, then applies the environment and
// the global flags on top.
func loadSettings() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.HistoryDB = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg
}

// newLogger creates the process logger on w.
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "mzpatch",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// openHistory opens the history database. A database that cannot be
// opened only costs the run its history entry.
func openHistory(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("history disabled", "db", cfg.HistoryDB, "err", err)
		return nil
	}
	return store
}
