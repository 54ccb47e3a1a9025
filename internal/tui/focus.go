package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyboost/internal/store"
)

// focusModel manages the per-user focus mode: enabled flag, notification
// blocking, and the blocked application list.
type focusModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	mode       *store.FocusMode
	formActive bool
	form       *huh.Form

	blockedInput *string
}

func newFocusModel(s *store.Store) focusModel {
	bi := ""
	return focusModel{
		store:        s,
		blockedInput: &bi,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f focusModel) refresh(userID string) tea.Cmd {
	st := f.store
	return func() tea.Msg {
		mode, err := st.GetFocusMode(userID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load focus mode: %v", err), isError: true}
		}
		return focusModeDataMsg{mode: mode}
	}
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case focusModeDataMsg:
		f.mode = msg.mode
		return f, nil

	case tea.KeyMsg:
		if f.mode == nil {
			return f, nil
		}
		switch {
		case key.Matches(msg, keys.Toggle):
			f.mode.Enabled = !f.mode.Enabled
			return f, f.save("Focus mode " + onOff(f.mode.Enabled))
		case msg.String() == "b":
			f.mode.BlockNotifications = !f.mode.BlockNotifications
			return f, f.save("Notification blocking " + onOff(f.mode.BlockNotifications))
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			return f.showForm()
		}
	}
	return f, nil
}

func (f focusModel) save(okText string) tea.Cmd {
	mode := *f.mode
	st := f.store
	return func() tea.Msg {
		if err := st.UpdateFocusMode(&mode); err != nil {
			return statusMsg{text: fmt.Sprintf("Save focus mode: %v", err), isError: true}
		}
		return statusMsg{text: okText}
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func (f focusModel) showForm() (focusModel, tea.Cmd) {
	*f.blockedInput = strings.Join(f.mode.BlockedApps, ", ")

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Blocked applications").
				Description("Comma-separated process names, e.g. slack, discord").
				Value(f.blockedInput),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func (f focusModel) updateForm(msg tea.Msg) (focusModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if m, ok := form.(*huh.Form); ok {
		f.form = m
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		f.mode.BlockedApps = parseBlockedApps(*f.blockedInput)
		return f, f.save("Blocked list updated")
	}

	return f, cmd
}

func parseBlockedApps(input string) []string {
	var apps []string
	for _, part := range strings.Split(input, ",") {
		if app := strings.TrimSpace(part); app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}

func (f focusModel) view() string {
	w := f.width - 4

	title := titleStyle.Render("Focus Mode")

	if f.formActive && f.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
		)
	}

	if f.mode == nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("  Loading...")),
		)
	}

	state := errorStyle.Render("○ disabled")
	if f.mode.Enabled {
		state = successStyle.Render("● enabled")
	}

	blocking := mutedStyle.Render("off")
	if f.mode.BlockNotifications {
		blocking = successStyle.Render("on")
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("Status"), state))
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("Block notifications"), blocking))
	rows = append(rows, "")

	rows = append(rows, mutedStyle.Render("  Blocked applications:"))
	if len(f.mode.BlockedApps) == 0 {
		rows = append(rows, mutedStyle.Render("    none"))
	} else {
		for _, app := range f.mode.BlockedApps {
			rows = append(rows, "    "+highlightStyle.Render(app))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  While enabled, the timer view shows only the countdown."))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  t: toggle  b: block notifications  e: edit blocked list"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
