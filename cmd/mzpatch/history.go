package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/platform/tui"
	"github.com/vovakirdan/mzpatch/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryRun   int64
	flagHistoryClear bool
	flagHistoryPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history [game-dir]",
	Short: "Show recorded patch runs",
	Long: `Show the patch runs recorded in the history database, newest first.

In a terminal the runs are shown in an interactive browser; use --plain to
print them instead.

Examples:
  mzpatch history
  mzpatch history ~/Games/HeroQuest --plain
  mzpatch history --run 12
  mzpatch history ~/Games/HeroQuest --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of runs to show")
	historyCmd.Flags().Int64Var(&flagHistoryRun, "run", 0, "Show the files and entries of one run")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the recorded runs of the game")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print instead of opening the browser")
}

func runHistory(cmd *cobra.Command, args []string) {
	settings := loadSettings()

	gameDir := ""
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		gameDir = abs
	}

	store, err := storage.Open(settings.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagHistoryClear:
		if gameDir == "" {
			store.Close()
			fmt.Fprintln(os.Stderr, "Error: --clear needs a game directory")
			os.Exit(1)
		}
		if err := store.ClearRuns(gameDir); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared history of %s\n", gameDir)

	case flagHistoryRun > 0:
		if err := printRun(store, flagHistoryRun); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case !flagHistoryPlain && tui.Interactive(os.Stdout):
		w, h := tui.Size(os.Stdout)
		if err := tui.RunHistory(store, gameDir, w, h); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		if err := printRuns(store, gameDir, flagHistoryLimit); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Error retrieving history: %v\n", err)
			os.Exit(1)
		}
	}
}

func printRuns(store *storage.Store, gameDir string, limit int) error {
	runs, err := store.RecentRuns(gameDir, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'mzpatch patch <game-dir> <bundle>' to patch a game.")
		return nil
	}

	// Print header
	fmt.Printf("  %-5s  %-16s  %-10s  %-5s  %-7s  %-7s  %s\n", "Run", "Date", "State", "Files", "Entries", "Skipped", "Game")
	fmt.Printf("  %-5s  %-16s  %-10s  %-5s  %-7s  %-7s  %s\n", "---", "----", "-----", "-----", "-------", "-------", "----")

	for _, r := range runs {
		state := string(r.State)
		if r.DryRun {
			state += "*"
		}
		game := r.GameTitle
		if game == "" {
			game = r.GameDir
		}
		fmt.Printf("  %-5d  %-16s  %-10s  %-5d  %-7d  %-7d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), state, r.FilesPatched, r.Entries, r.Skipped, game)
	}
	fmt.Println()
	fmt.Println("* dry run. Use --run <id> for details.")
	return nil
}

func printRun(store *storage.Store, id int64) error {
	run, err := store.RunByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run %d", id)
	}

	fmt.Printf("Run %d - %s\n", run.ID, run.GameTitle)
	fmt.Printf("  game:    %s\n", run.GameDir)
	fmt.Printf("  bundle:  %s (config v%d)\n", run.PatchPath, run.Version)
	fmt.Printf("  state:   %s\n", tui.RenderState(run.State))
	fmt.Printf("  started: %s (took %s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Duration())
	if run.Error != "" {
		fmt.Printf("  error:   %s\n", run.Error)
	}

	files, err := store.RunFiles(id)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, f := range files {
		line := fmt.Sprintf("  %-10s %s (%d entries, %d skipped)", tui.RenderStatus(f.Status), f.Path, f.Entries, f.Skipped)
		if f.Error != "" {
			line += ": " + f.Error
		}
		fmt.Println(line)
	}

	entries, err := store.RunEntries(id)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println()
		for _, e := range entries {
			fmt.Printf("  %s\n    %q -> %q\n", e.Selector, e.Original, e.Translated)
		}
	}
	return nil
}
