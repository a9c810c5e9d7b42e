// Package tui renders the running stopwatch for an active timer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"time-tracker/internal/timer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7DC6F")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

// actionMsg reports the outcome of a key-triggered controller call.
type actionMsg struct {
	note    string
	err     error
	stopped bool
}

// Model is the stopwatch view. The displayed time is recomputed from the
// session's absolute timestamps on every tick.
type Model struct {
	ctx  context.Context
	ctl  *timer.Controller
	now  func() time.Time
	snap timer.Snapshot
	note string
	err  error
	done bool
}

func NewModel(ctx context.Context, ctl *timer.Controller, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{ctx: ctx, ctl: ctl, now: now, snap: ctl.Snapshot(now())}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			return m, m.togglePause()
		case "s":
			return m, m.stop()
		}
	case tickMsg:
		m.snap = m.ctl.Snapshot(m.now())
		return m, tickCmd()
	case actionMsg:
		m.note, m.err = msg.note, msg.err
		m.snap = m.ctl.Snapshot(m.now())
		if msg.stopped {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) togglePause() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		switch ctl.State() {
		case timer.Running:
			return actionMsg{note: "paused", err: ctl.Pause(ctx)}
		case timer.Paused:
			return actionMsg{note: "resumed", err: ctl.Resume(ctx)}
		default:
			return actionMsg{err: timer.ErrNoActiveEntry}
		}
	}
}

func (m Model) stop() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		e, err := ctl.Stop(ctx)
		if err != nil {
			return actionMsg{err: err, stopped: true}
		}
		var d int64
		if e.DurationSec != nil {
			d = *e.DurationSec
		}
		return actionMsg{note: "stopped after " + timer.FormatHoursMinutes(d), stopped: true}
	}
}

func (m Model) View() string {
	var b strings.Builder
	title := "No active timer"
	if m.snap.Session != nil {
		title = m.snap.Session.Title
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(clockStyle.Render(timer.FormatClock(m.snap.Elapsed)))
	b.WriteString("\n")

	var state string
	switch m.snap.State {
	case timer.Running:
		state = runningStyle.Render("● running")
	case timer.Paused:
		state = pausedStyle.Render("❚❚ paused")
	default:
		state = idleStyle.Render("○ idle")
	}
	b.WriteString(state)
	if m.note != "" {
		b.WriteString("  " + m.note)
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}
	if !m.done {
		b.WriteString(helpStyle.Render("p pause/resume • s stop • q quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// Run shows the stopwatch until the user quits or stops the timer.
func Run(ctx context.Context, ctl *timer.Controller) error {
	p := tea.NewProgram(NewModel(ctx, ctl, time.Now), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
