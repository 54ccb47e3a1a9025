package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyboost/internal/store"
	"github.com/sadopc/studyboost/internal/timer"
)

type timerDataMsg struct {
	focusEnabled bool
	todayCount   int
	cycles       int
}

// timerModel renders the countdown and drives the engine from key input. The
// engine owns all session state; this model only holds display data.
type timerModel struct {
	engine *timer.Engine
	store  *store.Store
	userID string

	width  int
	height int

	now          time.Time
	focusEnabled bool
	todayCount   int
	cycles       int
}

func newTimerModel(engine *timer.Engine, s *store.Store, userID string) timerModel {
	return timerModel{
		engine: engine,
		store:  s,
		userID: userID,
		now:    time.Now(),
		cycles: timer.DefaultPolicy.CyclesBeforeLongBreak,
	}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// observe updates the displayed instant. Remaining time is derived from it.
func (m *timerModel) observe(now time.Time) {
	m.now = now
}

func (m timerModel) refresh() tea.Cmd {
	s := m.store
	userID := m.userID
	return func() tea.Msg {
		data := timerDataMsg{cycles: timer.DefaultPolicy.CyclesBeforeLongBreak}
		if fm, err := s.GetFocusMode(userID); err == nil {
			data.focusEnabled = fm.Enabled
		}
		if ds, err := s.GetDailyStats(userID); err == nil {
			data.todayCount = ds.PomodorosCompleted
		}
		if n, ok := intSetting(s, userID, store.SettingCyclesBeforeLong); ok {
			data.cycles = n
		}
		return data
	}
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case timerDataMsg:
		m.focusEnabled = msg.focusEnabled
		m.todayCount = msg.todayCount
		m.cycles = msg.cycles
		return m, nil

	case tea.KeyMsg:
		if m.engine == nil {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Start):
			if m.engine.Phase() == timer.PhaseIdle {
				pol := policyFor(m.store, m.userID)()
				m.engine.Start(pol.WorkSeconds, store.KindFocus)
				m.now = time.Now()
				return m, tea.Batch(m.refresh(), status("Focus session started"))
			}
		case key.Matches(msg, keys.Pause):
			switch m.engine.Phase() {
			case timer.PhaseRunning:
				m.engine.Pause()
				return m, status("Paused")
			case timer.PhasePaused:
				m.engine.Resume()
				return m, status("Resumed")
			}
		case key.Matches(msg, keys.Stop):
			if m.engine.Phase() != timer.PhaseIdle {
				m.engine.Stop()
				return m, tea.Batch(m.refresh(), status("Session stopped"))
			}
		}
	}
	return m, nil
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (m timerModel) view() string {
	if m.engine == nil {
		return ""
	}
	if m.focusEnabled && m.engine.Phase() != timer.PhaseIdle {
		if sess := m.engine.Session(); sess != nil && sess.Kind == store.KindFocus {
			return m.viewFocusOverlay()
		}
	}

	w := m.width - 4

	title := titleStyle.Render("Pomodoro Timer")

	var timeDisplay, phaseLabel, controls string
	switch m.engine.Phase() {
	case timer.PhaseIdle:
		pol := policyFor(m.store, m.userID)()
		timeDisplay = mutedStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatClock(pol.WorkSeconds))
		phaseLabel = mutedStyle.Render("Ready to start")
		controls = mutedStyle.Render("s: start  q: quit")
	case timer.PhaseRunning:
		remaining := m.engine.Remaining(m.now)
		style := accentStyle
		label := "FOCUS"
		if sess := m.engine.Session(); sess != nil && sess.Kind == store.KindBreak {
			style = successStyle
			label = "BREAK"
		}
		timeDisplay = style.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatClock(remaining))
		phaseLabel = style.Bold(true).Render(label)
		controls = mutedStyle.Render("space: pause  x: stop")
	case timer.PhasePaused:
		timeDisplay = countdownPausedStyle.Width(w - 6).Render(formatClock(m.engine.Remaining(m.now)))
		phaseLabel = warningStyle.Bold(true).Render("PAUSED")
		controls = mutedStyle.Render("space: resume  x: stop")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		m.renderProgress(),
		"",
		controls,
	)

	return panelStyle.Width(w).Render(content)
}

// renderProgress shows today's position within the long-break cycle plus the
// day total.
func (m timerModel) renderProgress() string {
	cycles := m.cycles
	if cycles < 1 {
		cycles = 1
	}
	inCycle := m.todayCount % cycles

	running := m.engine.Phase() == timer.PhaseRunning
	focusRunning := false
	if sess := m.engine.Session(); running && sess != nil && sess.Kind == store.KindFocus {
		focusRunning = true
	}

	var parts []string
	for i := 0; i < cycles; i++ {
		switch {
		case i < inCycle:
			parts = append(parts, successStyle.Render("●"))
		case i == inCycle && focusRunning:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	dots := strings.Join(parts, " ")
	counter := mutedStyle.Render(fmt.Sprintf("  cycle %d · %d today", m.engine.CycleIndex(), m.todayCount))
	return dots + counter
}

// viewFocusOverlay replaces the timer panel with a minimal full-width
// countdown while focus mode is on.
func (m timerModel) viewFocusOverlay() string {
	remaining := m.engine.Remaining(m.now)

	label := accentStyle.Bold(true).Render("FOCUS MODE")
	clock := countdownStyle.Render(formatClock(remaining))
	if m.engine.Phase() == timer.PhasePaused {
		clock = countdownPausedStyle.Render(formatClock(remaining))
		label = warningStyle.Bold(true).Render("FOCUS MODE · PAUSED")
	}
	hint := mutedStyle.Render("space: pause  x: stop  3: focus settings")

	inner := lipgloss.JoinVertical(lipgloss.Center, label, "", clock, "", hint)
	box := overlayStyle.Render(inner)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
