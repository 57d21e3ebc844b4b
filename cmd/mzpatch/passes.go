package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import the packages that register passes
	_ "github.com/vovakirdan/mzpatch/internal/credits"
	_ "github.com/vovakirdan/mzpatch/internal/engine"
	_ "github.com/vovakirdan/mzpatch/internal/patcher"
	"github.com/vovakirdan/mzpatch/internal/registry"
)

var passesCmd = &cobra.Command{
	Use:   "passes [id]",
	Short: "List the patch passes",
	Long: `Shows every patch pass in run order, with the config.json version
that enables it. With an ID, shows that pass only.

Examples:
  mzpatch passes
  mzpatch passes plugin-script`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPasses,
}

func runPasses(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		p, err := registry.Lookup(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'mzpatch passes' to see the available passes.")
			os.Exit(1)
		}
		fmt.Printf("%s - %s\n", p.ID, p.Title)
		fmt.Printf("  enabled by config version %d and later, runs at order %d\n", p.MinVersion, p.Order)
		return
	}

	passes := registry.List()

	if len(passes) == 0 {
		fmt.Println("No passes registered.")
		return
	}

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, p := range passes {
		if len(p.ID) > maxIDLen {
			maxIDLen = len(p.ID)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "ID", "Version", "Title")
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "--", "-------", "-----")

	for _, p := range passes {
		fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, p.ID, fmt.Sprintf("v%d+", p.MinVersion), p.Title)
	}
}
