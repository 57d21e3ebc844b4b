// Package tui provides the Bubble Tea views of mzpatch: the live progress
// of a patch run and the run history browser.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickInterval refreshes the elapsed time of a running patch.
const tickInterval = 100 * time.Millisecond

// TickMsg is sent to refresh time-dependent parts of a view.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
