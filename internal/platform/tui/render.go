package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			MarginBottom(1)
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// stateStyles colors the run states.
var stateStyles = map[domain.State]lipgloss.Style{
	domain.StateValidating: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	domain.StateScanning:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	domain.StatePatching:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	domain.StateFinalized:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	domain.StateAborted:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// statusStyles colors the file outcomes.
var statusStyles = map[domain.FileStatus]lipgloss.Style{
	domain.FilePatched:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	domain.FileUnchanged: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	domain.FileSkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	domain.FileFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// RenderState renders a run state in its color.
func RenderState(s domain.State) string {
	style, ok := stateStyles[s]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(string(s))
}

// RenderStatus renders a file status in its color.
func RenderStatus(s domain.FileStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(string(s))
}

// RenderReport renders the end-of-run summary: the state, the counts and
// every file that did not end up unchanged.
func RenderReport(r *domain.Report) string {
	var b strings.Builder

	title := "Patch " + RenderState(r.State)
	if r.DryRun {
		title += dimStyle.Render(" (dry run)")
	}
	b.WriteString(title)
	b.WriteString("\n")

	fmt.Fprintf(&b, "  files: %d patched, %d unchanged, %d failed\n",
		r.Count(domain.FilePatched), r.Count(domain.FileUnchanged), r.Count(domain.FileFailed))
	fmt.Fprintf(&b, "  entries: %d translated, %d skipped\n", r.EntryCount(), r.SkippedCount())
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "  took: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}

	for _, f := range r.Files {
		if f.Status == domain.FileUnchanged {
			continue
		}
		line := fmt.Sprintf("  %-10s %s", RenderStatus(f.Status), f.Path)
		if len(f.Entries) > 0 {
			line += dimStyle.Render(fmt.Sprintf(" (%d)", len(f.Entries)))
		}
		if f.Error != "" {
			line += " " + errorStyle.Render(f.Error)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if r.Error != "" {
		b.WriteString(errorStyle.Render("error: " + r.Error))
		b.WriteString("\n")
	}
	return b.String()
}

// centerText pads text so it is centered in width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "."
}
