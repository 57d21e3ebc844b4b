package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/bundle"
	"github.com/vovakirdan/mzpatch/internal/config"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/engine"
	"github.com/vovakirdan/mzpatch/internal/game"
	"github.com/vovakirdan/mzpatch/internal/platform/tui"
)

var (
	flagWorkers       int
	flagPluginWorkers int
	flagTimeout       time.Duration
	flagDryRun        bool
	flagNoTUI         bool
	flagNoBackup      bool
	flagFields        string
)

var patchCmd = &cobra.Command{
	Use:   "patch <game-dir> <bundle>",
	Short: "Apply a patch bundle to a game",
	Long: `Apply a translation bundle (zip archive or directory) to a game.

The game may be given as its directory or as the path of its executable.
Original files are copied to <game>/.backup on the first run and every run
patches those pristine copies, so applying a bundle twice gives the same
result as applying it once.

Examples:
  mzpatch patch ~/Games/HeroQuest ./heroquest-fr.zip
  mzpatch patch ~/Games/HeroQuest/Game.exe ./heroquest-fr.zip --workers 4
  mzpatch patch ~/Games/HeroQuest ./heroquest-fr --dry-run --no-tui`,
	Args: cobra.ExactArgs(2),
	Run:  runPatch,
}

func init() {
	patchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Data file workers (0 = config or one per CPU)")
	patchCmd.Flags().IntVar(&flagPluginWorkers, "plugin-workers", 0, "Plugin file workers (0 = config)")
	patchCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Abort the run after this long (0 = config)")
	patchCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run every pass but write nothing")
	patchCmd.Flags().BoolVar(&flagNoTUI, "no-tui", false, "Log progress instead of showing the progress view")
	patchCmd.Flags().BoolVar(&flagNoBackup, "no-backup", false, "Do not back up original files")
	patchCmd.Flags().StringVar(&flagFields, "fields", "", "Field schema YAML replacing the built-in one")
}

func runPatch(cmd *cobra.Command, args []string) {
	settings := loadSettings()
	useTUI := !flagNoTUI && tui.Interactive(os.Stderr)

	// The progress view owns the terminal; logs would tear it.
	var logOut io.Writer = os.Stderr
	if useTUI {
		logOut = io.Discard
	}
	logger := newLogger(logOut, settings.LogLevel)

	var res resources
	g, err := game.Locate(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	b, err := bundle.Open(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res.add(b)
	defer res.close()

	patch, err := b.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		res.exit(exitCode(err))
	}

	fieldsFile := settings.FieldsFile
	if flagFields != "" {
		fieldsFile = flagFields
	}
	fields, err := config.LoadFields(fieldsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		res.exit(1)
	}

	opts := engine.Options{
		Workers:       pick(flagWorkers, settings.Workers),
		PluginWorkers: pick(flagPluginWorkers, settings.PluginWorkers),
		Timeout:       settings.Timeout,
		DryRun:        flagDryRun,
		NoBackup:      flagNoBackup || !settings.Backup,
		Fields:        fields,
		Overrides:     b,
		Logger:        logger,
	}
	if flagTimeout > 0 {
		opts.Timeout = flagTimeout
	}
	if store := openHistory(settings, logger); store != nil {
		res.add(store)
		opts.History = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("patching", "game", g.GameTitle, "dir", g.GameDir, "bundle", b.Path())

	var rep *domain.Report
	if useTUI {
		rep, err = tui.RunPatch(ctx, "Patching "+titleOf(g), func(ctx context.Context, onProgress func(engine.Progress), onState func(domain.State)) *domain.Report {
			o := opts
			o.OnProgress = onProgress
			o.OnState = onState
			return engine.New(o).Run(ctx, g, patch)
		})
		if err != nil {
			logger.Warn("progress view failed", "err", err)
		}
	} else {
		rep = engine.New(opts).Run(ctx, g, patch)
	}

	fmt.Print(tui.RenderReport(rep))
	if rep.Err != nil {
		stop()
		res.exit(exitCode(rep.Err))
	}
}

// resources are closed before the command returns or exits early. os.Exit
// skips deferred calls, so every exit path goes through exit.
type resources []io.Closer

func (r *resources) add(c io.Closer) {
	*r = append(*r, c)
}

// close closes in reverse order of adding. A second call does nothing.
func (r *resources) close() {
	for i := len(*r) - 1; i >= 0; i-- {
		if err := (*r)[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	*r = nil
}

func (r *resources) exit(code int) {
	r.close()
	os.Exit(code)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnsupportedVersion:
		return 3
	case domain.KindInvalidConfig, domain.KindRegexCompile:
		return 2
	case domain.KindCancelled:
		return 130
	}
	return 1
}

// pick returns flag when it is set, otherwise the configured value.
func pick(flag, configured int) int {
	if flag > 0 {
		return flag
	}
	return configured
}

func titleOf(g *domain.GameInfo) string {
	if g.GameTitle != "" {
		return g.GameTitle
	}
	return g.GameDir
}
