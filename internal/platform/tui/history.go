package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mzpatch/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the game list sidebar
	sidebarWidth       = 24  // Width of the game list sidebar
	maxRuns            = 100 // Max runs to load per game
)

// HistorySource is the part of the history store the browser reads.
type HistorySource interface {
	AllGamesStats() (map[string]*storage.GameStats, error)
	RecentRuns(gameDir string, limit int) ([]storage.Run, error)
}

// HistoryModel is the Bubble Tea model for browsing recorded runs.
type HistoryModel struct {
	games       []*storage.GameStats // Patched games, most recent first
	gameCursor  int                  // Currently selected game index
	source      HistorySource
	runs        []storage.Run
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a history browser. A non-empty gameDir selects
// that game first.
func NewHistoryModel(source HistorySource, gameDir string, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		source:      source,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	stats, err := source.AllGamesStats()
	if err != nil {
		m.loadErr = err
	}
	for _, st := range stats {
		m.games = append(m.games, st)
	}
	sort.Slice(m.games, func(i, j int) bool {
		return m.games[i].LastPatched.After(m.games[j].LastPatched)
	})
	for i, g := range m.games {
		if g.GameDir == gameDir {
			m.gameCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.games) > 0 {
		m.loadRuns()
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 5},
		{Title: "Date", Width: 14},
		{Title: "State", Width: 10},
		{Title: "Files", Width: 6},
		{Title: "Entries", Width: 8},
		{Title: "Skipped", Width: 8},
		{Title: "Bundle", Width: 20},
	}

	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	used := 0
	for _, c := range columns[:len(columns)-1] {
		used += c.Width + 2
	}
	if rest := tableWidth - used - 2; rest > columns[len(columns)-1].Width {
		columns[len(columns)-1].Width = min(rest, 40)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads the runs of the selected game.
func (m *HistoryModel) loadRuns() {
	runs, err := m.source.RecentRuns(m.games[m.gameCursor].GameDir, maxRuns)
	m.runs, m.loadErr = runs, err
	m.updateTableRows()
}

// updateTableRows updates the table with the current runs.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		state := string(r.State)
		if r.DryRun {
			state += "*"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", r.ID),
			r.StartedAt.Local().Format("Jan 02 15:04"),
			state,
			fmt.Sprintf("%d", r.FilesPatched),
			fmt.Sprintf("%d", r.Entries),
			fmt.Sprintf("%d", r.Skipped),
			filepath.Base(r.PatchPath),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor + 1) % len(m.games)
				m.loadRuns()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevGame):
			if len(m.games) > 0 {
				m.gameCursor--
				if m.gameCursor < 0 {
					m.gameCursor = len(m.games) - 1
				}
				m.loadRuns()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// SelectedGame returns the directory of the selected game, or "".
func (m HistoryModel) SelectedGame() string {
	if len(m.games) == 0 {
		return ""
	}
	return m.games[m.gameCursor].GameDir
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "PATCH HISTORY"
	if len(m.games) > 0 {
		g := m.games[m.gameCursor]
		title = fmt.Sprintf("PATCH HISTORY - %s", gameName(g))
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderWideLayout renders the runs with a sidebar for game selection.
func (m HistoryModel) renderWideLayout() string {
	sidebarStyle := boxStyle.Width(sidebarWidth)

	var sidebar strings.Builder
	sidebar.WriteString("Games\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, g := range m.games {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.gameCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + truncate(gameName(g), sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", boxStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders the runs with the selected game above them.
func (m HistoryModel) renderNarrowLayout() string {
	var b strings.Builder
	if len(m.games) > 1 {
		b.WriteString(centerText(fmt.Sprintf("< %s >", gameName(m.games[m.gameCursor])), m.width))
		b.WriteString("\n\n")
	}
	b.WriteString(centerText(boxStyle.Render(m.renderTableContent()), m.width))
	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	if m.loadErr != nil {
		return errorStyle.Render(m.loadErr.Error())
	}
	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No runs recorded yet.\nRun 'mzpatch patch <game> <bundle>' first.")
	}
	return m.table.View()
}

func gameName(g *storage.GameStats) string {
	if g.GameTitle != "" {
		return g.GameTitle
	}
	return filepath.Base(g.GameDir)
}

// RunHistory runs the history browser until the user quits.
func RunHistory(source HistorySource, gameDir string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(source, gameDir, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
