package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/engine"
)

const (
	maxBarWidth = 60
	recentFiles = 5
)

// ProgressMsg reports a finished file.
type ProgressMsg engine.Progress

// StateMsg reports a state change of the run.
type StateMsg domain.State

// DoneMsg carries the final report.
type DoneMsg struct {
	Report *domain.Report
}

// PatchModel is the Bubble Tea model showing a running patch.
type PatchModel struct {
	title     string
	bar       progress.Model
	help      help.Model
	keys      PatchKeyMap
	cancel    context.CancelFunc
	state     domain.State
	done      int
	total     int
	recent    []string
	started   time.Time
	now       time.Time
	report    *domain.Report
	cancelled bool
	width     int
}

// NewPatchModel creates a progress view. cancel is called when the user
// asks to stop the run.
func NewPatchModel(title string, cancel context.CancelFunc) PatchModel {
	now := time.Now()
	return PatchModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		help:    help.New(),
		keys:    DefaultPatchKeyMap(),
		cancel:  cancel,
		state:   domain.StateValidating,
		started: now,
		now:     now,
	}
}

// Init starts the clock.
func (m PatchModel) Init() tea.Cmd {
	return tickCmd(tickInterval)
}

// Update handles messages and updates the model state.
func (m PatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		m.help.Width = msg.Width
		return m, nil

	case StateMsg:
		m.state = domain.State(msg)
		return m, nil

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.recent = append(m.recent, msg.File)
		if len(m.recent) > recentFiles {
			m.recent = m.recent[len(m.recent)-recentFiles:]
		}
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		if m.report != nil {
			return m, nil
		}
		return m, tickCmd(tickInterval)

	case DoneMsg:
		m.report = msg.Report
		if msg.Report != nil {
			m.state = msg.Report.State
		}
		return m, tea.Quit
	}

	return m, nil
}

// Percent returns the finished share of files, 0 before scanning ends.
func (m PatchModel) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// Report returns the final report, nil while the run goes on.
func (m PatchModel) Report() *domain.Report {
	return m.report
}

// View renders the progress view.
func (m PatchModel) View() string {
	if m.report != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	status := RenderState(m.state)
	if m.cancelled {
		status += dimStyle.Render(" (cancelling)")
	}
	elapsed := m.now.Sub(m.started).Round(100 * time.Millisecond)
	fmt.Fprintf(&b, "%s  %d/%d files  %s\n\n", status, m.done, m.total, dimStyle.Render(elapsed.String()))

	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n\n")

	for _, f := range m.recent {
		b.WriteString(dimStyle.Render("  " + truncate(f, max(m.width-4, 20))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// StartFunc starts a patch run with the given callbacks and returns its
// report when the run ends.
type StartFunc func(ctx context.Context, onProgress func(engine.Progress), onState func(domain.State)) *domain.Report

// RunPatch runs start under the progress view on stderr. The view's cancel
// key cancels the run context; the run's report is returned either way.
func RunPatch(ctx context.Context, title string, start StartFunc) (*domain.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewPatchModel(title, cancel), tea.WithOutput(os.Stderr))

	result := make(chan *domain.Report, 1)
	go func() {
		rep := start(ctx,
			func(pr engine.Progress) { p.Send(ProgressMsg(pr)) },
			func(s domain.State) { p.Send(StateMsg(s)) },
		)
		result <- rep
		p.Send(DoneMsg{Report: rep})
	}()

	_, err := p.Run()
	if err != nil {
		// The view is gone; stop the run and wait for its report.
		cancel()
	}
	return <-result, err
}
