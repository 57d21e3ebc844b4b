package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/backup"
	"github.com/vovakirdan/mzpatch/internal/game"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <game-dir>",
	Short: "Restore a game's original files",
	Long: `Copy every backed-up original file back into the game, remove the
files that patching added, then delete the backup and patch-summary.json.

Examples:
  mzpatch restore ~/Games/HeroQuest`,
	Args: cobra.ExactArgs(1),
	Run:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) {
	settings := loadSettings()
	logger := newLogger(os.Stderr, settings.LogLevel)

	g, err := game.Locate(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := backup.New(g.GameDir, logger)
	if !store.Exists() {
		fmt.Fprintf(os.Stderr, "Error: no backup found in %s\n", g.GameDir)
		fmt.Fprintln(os.Stderr, "The game has not been patched, or was already restored.")
		os.Exit(1)
	}

	n, err := store.Restore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Restored %d original files in %s\n", n, g.GameDir)
}
