// Package tui provides the Bubble Tea shadowing player.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/practice"
	"github.com/verte-zerg/shadow/internal/stats"
	"github.com/verte-zerg/shadow/internal/timestamp"
)

const tickInterval = 100 * time.Millisecond

type phase int

const (
	phaseListen phase = iota
	phaseRecite
	phaseSubmitting
	phaseResult
)

// SubmitFunc records a transcript typed after listening.
type SubmitFunc func(ctx context.Context, transcript string, durationSeconds int) (practice.Submission, error)

type tickMsg struct {
	gen int
}

type submittedMsg struct {
	sub practice.Submission
	err error
}

// Model implements the subtitle player and transcript entry.
type Model struct {
	material model.Material
	subs     []model.SentenceTimestamp
	duration time.Duration
	submit   SubmitFunc
	now      func() time.Time

	width  int
	height int

	phase     phase
	position  time.Duration
	playing   bool
	tickGen   int
	startedAt time.Time

	input textinput.Model

	result *practice.Submission
	err    error
}

var (
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	spokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true)
	extraStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C6BC8"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a player for material. now may be nil.
func NewModel(m model.Material, submit SubmitFunc, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	subs := make([]model.SentenceTimestamp, len(m.Sentences))
	for i, s := range m.Sentences {
		subs[i] = s.SentenceTimestamp
	}
	input := textinput.New()
	input.Placeholder = "Type what you said"
	input.Prompt = "> "
	return &Model{
		material:  m,
		subs:      subs,
		duration:  time.Duration(m.DurationSeconds * float64(time.Second)),
		submit:    submit,
		now:       now,
		input:     input,
		playing:   true,
		startedAt: now(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Result returns the recorded submission once the practice was submitted.
func (m *Model) Result() (*practice.Submission, error) {
	return m.result, m.err
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.contentWidth()-len(m.input.Prompt)-1, 10)
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case submittedMsg:
		m.phase = phaseResult
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.result = &msg.sub
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseListen:
			return m, m.handleListenKey(msg)
		case phaseRecite:
			return m, m.handleReciteKey(msg)
		case phaseResult:
			if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc || msg.String() == "q" {
				return m, tea.Quit
			}
		}
		return m, nil
	default:
		if m.phase == phaseRecite {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.tickGen || !m.playing || m.phase != phaseListen {
		return nil
	}
	m.position += tickInterval
	if m.position >= m.duration {
		m.position = m.duration
		m.playing = false
		return nil
	}
	return m.tick()
}

func (m *Model) handleListenKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc || msg.String() == "q":
		return tea.Quit
	case msg.Type == tea.KeySpace:
		if m.playing {
			m.pause()
			return nil
		}
		if m.position >= m.duration {
			m.position = 0
		}
		return m.play()
	case msg.String() == "r":
		m.position = 0
		return m.play()
	case msg.Type == tea.KeyEnter || msg.Type == tea.KeyTab:
		m.pause()
		m.phase = phaseRecite
		return m.input.Focus()
	}
	return nil
}

func (m *Model) handleReciteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.phase = phaseListen
		return nil
	case tea.KeyEnter:
		transcript := strings.TrimSpace(m.input.Value())
		if transcript == "" || m.submit == nil {
			return nil
		}
		m.input.Blur()
		m.phase = phaseSubmitting
		return m.submitCmd(transcript)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submitCmd(transcript string) tea.Cmd {
	seconds := int(m.now().Sub(m.startedAt).Seconds())
	submit := m.submit
	return func() tea.Msg {
		sub, err := submit(context.Background(), transcript, seconds)
		return submittedMsg{sub: sub, err: err}
	}
}

func (m *Model) play() tea.Cmd {
	m.playing = true
	m.tickGen++
	return m.tick()
}

func (m *Model) pause() {
	m.playing = false
	m.tickGen++
}

// activeSentence is the index of the subtitle shown at the playback position.
func (m *Model) activeSentence() int {
	return timestamp.At(m.subs, m.position.Seconds())
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.phase {
	case phaseListen:
		body = m.viewSubtitles()
	case phaseRecite:
		body = m.viewSubtitles() + "\n\n" + m.input.View()
	case phaseSubmitting:
		body = footerStyle.Render("Scoring...")
	case phaseResult:
		body = m.viewResult()
	}
	content := titleStyle.Render(m.material.Title) + "\n\n" + body
	if width := m.contentWidth(); width > 0 {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return content + "\n\n" + footer
	}
	body = lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) viewSubtitles() string {
	active := m.activeSentence()
	if m.position >= m.duration && !m.playing {
		active = len(m.subs)
	}
	return wrapStyledRunes(subtitleRunes(m.subs, active), m.contentWidth())
}

func (m *Model) viewResult() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not record practice: %v", m.err))
	}
	if m.result == nil {
		return ""
	}
	r := m.result
	lines := []string{
		fmt.Sprintf("Score %.2f  (%d/%d words)  +%d XP", r.Result.Score, r.Result.MatchedCount, r.Result.TotalExpectedWords, r.XPGained()),
		"",
		wrapStyledRunes(analysisRunes(r.Analysis), m.contentWidth()),
		"",
		r.Feedback,
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	var segments []string
	switch m.phase {
	case phaseListen:
		state := "||"
		if m.playing {
			state = ">"
		}
		segments = append(segments,
			fmt.Sprintf("%s %s / %s", state, clock(m.position), clock(m.duration)),
			fmt.Sprintf("Sentence %d/%d", min(m.activeSentence()+1, len(m.subs)), len(m.subs)),
			"space pause · r restart · enter recite · q quit",
		)
	case phaseRecite:
		segments = append(segments, "enter submit · esc listen again")
	case phaseResult:
		if m.result != nil {
			segments = append(segments, fmt.Sprintf("Level %d · Streak %d · Goal %d/%d",
				m.result.Snapshot.Level, m.result.Snapshot.CurrentStreak,
				m.result.Goal.CompletedCount, m.result.Goal.TargetCount))
		}
		segments = append(segments, "enter quit")
	default:
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func clock(d time.Duration) string {
	return stats.FormatDuration(int(d.Seconds()))
}
