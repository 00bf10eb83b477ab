// Package statsui provides the Bubble Tea progress dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shadow/internal/stats"
)

type paneKind int

const (
	paneOverview paneKind = iota
	paneAchievements
	paneHistory
)

const (
	missedWordsShown = 8
	narrowWidth      = 80
	trendWindow      = 3
)

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true)
	currentTabStyle = tabStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	otherTabStyle = tabStyle.
			Foreground(lipgloss.Color("#B0B0B0")).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	rowsStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Loader fetches the report shown by the dashboard.
type Loader func(ctx context.Context) (stats.Report, error)

type loadedMsg struct {
	report stats.Report
	err    error
}

type pane struct {
	title string
	view  viewport.Model
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	load    Loader
	report  stats.Report
	loaded  bool
	loadErr error

	panes   []pane
	current paneKind
	history table.Model

	width  int
	height int
}

// NewModel constructs a dashboard. The report is fetched by Init and on
// every reload.
func NewModel(load Loader) *Model {
	m := &Model{load: load}
	for _, title := range []string{"Overview", "Achievements", "History"} {
		m.panes = append(m.panes, pane{title: title, view: viewport.New(0, 0)})
	}
	m.history = table.New(
		table.WithColumns([]table.Column{
			{Title: "When", Width: 16},
			{Title: "Score", Width: 7},
			{Title: "Time", Width: 7},
			{Title: "XP", Width: 6},
			{Title: "Missed", Width: 30},
		}),
		table.WithHeight(1),
		table.WithStyles(historyStyles()),
	)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		r, err := load(context.Background())
		return loadedMsg{report: r, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.apply(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.fill()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "left", "h", "shift+tab":
		m.switchPane(-1)
		return tea.ClearScreen
	case "right", "l", "tab":
		m.switchPane(1)
		return tea.ClearScreen
	case "r":
		return m.fetch()
	case "g", "home":
		if m.current == paneHistory {
			m.history.GotoTop()
		} else {
			m.panes[m.current].view.GotoTop()
		}
		return nil
	case "G", "end":
		if m.current == paneHistory {
			m.history.GotoBottom()
		} else {
			m.panes[m.current].view.GotoBottom()
		}
		return nil
	}
	var cmd tea.Cmd
	if m.current == paneHistory {
		m.history, cmd = m.history.Update(msg)
	} else {
		m.panes[m.current].view, cmd = m.panes[m.current].view.Update(msg)
	}
	return cmd
}

func (m *Model) apply(msg loadedMsg) {
	m.loaded = true
	m.loadErr = msg.err
	if msg.err != nil {
		return
	}
	m.report = msg.report
	m.history.SetRows(historyRows(msg.report))
	m.fill()
}

func (m *Model) switchPane(delta int) {
	n := len(m.panes)
	m.current = paneKind((int(m.current) + delta + n) % n)
	if m.current == paneHistory {
		m.history.Focus()
		return
	}
	m.history.Blur()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	tabs := m.viewTabs()
	status := m.viewStatus()
	bodyHeight := m.bodyHeight(tabs, status)
	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		box(m.viewBody(), m.width, bodyHeight),
		status,
	)
}

func (m *Model) bodyHeight(tabs, status string) int {
	return max(m.height-lipgloss.Height(tabs)-lipgloss.Height(status), 1)
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight(m.viewTabs(), m.viewStatus())
	for i := range m.panes {
		m.panes[i].view.Width = m.width
		m.panes[i].view.Height = h
	}
	m.history.SetWidth(m.width)
	m.history.SetHeight(max(h-1, 1))
}

func (m *Model) viewTabs() string {
	tabs := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		style := otherTabStyle
		if paneKind(i) == m.current {
			style = currentTabStyle
		}
		tabs = append(tabs, style.Render(p.title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewStatus() string {
	lines := []string{hintStyle.Render("Tabs: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q")}
	switch {
	case m.loadErr != nil:
		lines = append(lines, errorStyle.Render(m.loadErr.Error()))
	case m.report.Degraded:
		lines = append(lines, noticeStyle.Render("Progress could not be loaded; showing defaults."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewBody() string {
	switch {
	case !m.loaded:
		return "Loading..."
	case m.loadErr != nil:
		return "Failed to load stats."
	case m.current == paneHistory && len(m.report.Logs) == 0:
		return "No practice found."
	case m.current == paneHistory:
		return rowsStyle.Render(m.history.View())
	}
	return m.panes[m.current].view.View()
}

func (m *Model) fill() {
	if !m.loaded || m.loadErr != nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = narrowWidth
	}
	m.panes[paneOverview].view.SetContent(overview(m.report, width))
	m.panes[paneAchievements].view.SetContent(achievements(m.report))
}

func overview(r stats.Report, width int) string {
	snap := r.Snapshot
	level := fmt.Sprintf("%d", r.Level.Level)
	if !r.Level.Max {
		level += "  " + stats.ProgressBar(r.Level.Fraction(snap.TotalXP), 10)
	}
	cards := []string{
		card("Level", level),
		card("XP", fmt.Sprintf("%d", snap.TotalXP)),
		card("Streak", fmt.Sprintf("%d (best %d)", snap.CurrentStreak, snap.LongestStreak)),
		card("Practices", fmt.Sprintf("%d", snap.TotalPractices)),
		card("Avg Score", fmt.Sprintf("%.2f", snap.AverageScore)),
		card("Today", fmt.Sprintf("%d/%d", r.Goal.CompletedCount, r.Goal.TargetCount)),
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if width >= narrowWidth {
		grid = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
		)
	}

	sections := []string{grid}
	if scores := r.Scores(); len(scores) > 1 {
		sections = append(sections, "Score trend\n"+stats.Sparkline(stats.MovingAverage(scores, trendWindow)))
	}
	var missed bytes.Buffer
	if err := stats.RenderMissedWords(&missed, r.Logs, missedWordsShown); err != nil {
		sections = append(sections, fmt.Sprintf("Failed to render missed words: %v", err))
	} else if missed.Len() > 0 {
		sections = append(sections, strings.TrimRight(missed.String(), "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func achievements(r stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderAchievements(&buf, r.Achievements); err != nil {
		return fmt.Sprintf("Failed to render achievements: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func historyRows(r stats.Report) []table.Row {
	rows := make([]table.Row, 0, len(r.Logs))
	for _, log := range r.Logs {
		rows = append(rows, table.Row{
			log.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", log.Score),
			stats.FormatDuration(log.DurationSeconds),
			fmt.Sprintf("+%d", log.XPGained),
			strings.Join(log.MissedWords, ", "),
		})
	}
	return rows
}

func historyStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	s.Cell = s.Cell.Padding(0, 1, 0, 0)
	s.Selected = s.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	return s
}

// box pads s to exactly height lines of width columns, dropping overflow.
func box(s string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxWidth(width).
		MaxHeight(height).
		Render(s)
}
