package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

var (
	flagWrapWidth   int
	flagWrapLocale  string
	flagWrapFace    bool
	flagWrapDynamic bool
)

var wrapCmd = &cobra.Command{
	Use:   "wrap [text]",
	Short: "Preview how text is wrapped",
	Long: `Wrap text the way the patcher wraps translated dialogue. With no
argument, or "-", the text is read from stdin. Escape codes such as \C[2]
take no width.

Examples:
  mzpatch wrap --width 40 "A rather long line of translated dialogue"
  mzpatch wrap --width 40 --dynamic --face "Shown next to a face portrait"
  echo "日本語のテキスト" | mzpatch wrap --locale ja`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWrap,
}

func init() {
	wrapCmd.Flags().IntVar(&flagWrapWidth, "width", reflow.DefaultWidth, "Line budget in columns")
	wrapCmd.Flags().StringVar(&flagWrapLocale, "locale", "", "BCP-47 tag of the text (ja, zh and ko count wide glyphs twice)")
	wrapCmd.Flags().BoolVar(&flagWrapFace, "face", false, "The message shows a face portrait")
	wrapCmd.Flags().BoolVar(&flagWrapDynamic, "dynamic", false, "Apply dynamic wrap width")
}

func runWrap(cmd *cobra.Command, args []string) {
	var text string
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		text = strings.TrimRight(string(data), "\r\n")
	} else {
		text = args[0]
	}

	cfg := &domain.Config{
		Version:          3,
		WrapWidth:        flagWrapWidth,
		DynamicWrapWidth: flagWrapDynamic,
		Locale:           flagWrapLocale,
	}
	budget := reflow.Budget(cfg, reflow.Hints{Face: flagWrapFace})
	metrics := reflow.ForLocale(flagWrapLocale)

	for _, line := range reflow.Wrap(text, budget, metrics) {
		w := reflow.Width(line, metrics)
		fmt.Printf("%s%s|%d\n", line, strings.Repeat(" ", max(budget-w, 0)), w)
	}
}
