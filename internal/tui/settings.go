package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyboost/internal/store"
)

type settingsModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workDuration *string
	shortBreak   *string
	longBreak    *string
	cycles       *string
	sound        *bool
	vibration    *bool
	desktop      *bool
}

func newSettingsModel(s *store.Store) settingsModel {
	wd, sb, lb, cy := "", "", "", ""
	snd, vib, dsk := true, true, true
	return settingsModel{
		store:        s,
		workDuration: &wd,
		shortBreak:   &sb,
		longBreak:    &lb,
		cycles:       &cy,
		sound:        &snd,
		vibration:    &vib,
		desktop:      &dsk,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh(userID string) tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings(userID)
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workDuration = secsToMin(s.getVal(store.SettingWorkDuration, "1500"))
	*s.shortBreak = secsToMin(s.getVal(store.SettingShortBreak, "300"))
	*s.longBreak = secsToMin(s.getVal(store.SettingLongBreak, "900"))
	*s.cycles = s.getVal(store.SettingCyclesBeforeLong, "4")
	*s.sound = s.getVal(store.SettingSoundEnabled, "true") == "true"
	*s.vibration = s.getVal(store.SettingVibrationEnabled, "true") == "true"
	*s.desktop = s.getVal(store.SettingNotifications, "true") == "true"

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus duration (min)").
				Validate(validateMinutes).Value(s.workDuration),
			huh.NewInput().Title("Short break (min)").
				Validate(validateMinutes).Value(s.shortBreak),
			huh.NewInput().Title("Long break (min)").
				Validate(validateMinutes).Value(s.longBreak),
			huh.NewInput().Title("Cycles before long break").
				Validate(validateCycles).Value(s.cycles),
		).Title("Intervals"),
		huh.NewGroup(
			huh.NewConfirm().Title("Completion sound").Value(s.sound),
			huh.NewConfirm().Title("Terminal bell").Value(s.vibration),
			huh.NewConfirm().Title("Desktop notifications").Value(s.desktop),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMinutes(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("enter a number of minutes")
	}
	if n < 1 || n > 180 {
		return fmt.Errorf("must be between 1 and 180 minutes")
	}
	return nil
}

func validateCycles(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if n < 1 || n > 12 {
		return fmt.Errorf("must be between 1 and 12")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, tea.Batch(s.refresh(s.userID), status("Settings saved"))
	}

	return s, cmd
}

// saveSettings persists the form. Interval changes apply from the next
// session; the running one keeps its original duration.
func (s settingsModel) saveSettings() {
	s.store.SetSetting(s.userID, store.SettingWorkDuration, minToSecs(*s.workDuration))
	s.store.SetSetting(s.userID, store.SettingShortBreak, minToSecs(*s.shortBreak))
	s.store.SetSetting(s.userID, store.SettingLongBreak, minToSecs(*s.longBreak))
	s.store.SetSetting(s.userID, store.SettingCyclesBeforeLong, *s.cycles)
	s.store.SetSetting(s.userID, store.SettingSoundEnabled, strconv.FormatBool(*s.sound))
	s.store.SetSetting(s.userID, store.SettingVibrationEnabled, strconv.FormatBool(*s.vibration))
	s.store.SetSetting(s.userID, store.SettingNotifications, strconv.FormatBool(*s.desktop))
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(s.userID, k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(28).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.SettingWorkDuration:
		return "Focus duration"
	case store.SettingShortBreak:
		return "Short break"
	case store.SettingLongBreak:
		return "Long break"
	case store.SettingCyclesBeforeLong:
		return "Cycles before long break"
	case store.SettingSoundEnabled:
		return "Completion sound"
	case store.SettingVibrationEnabled:
		return "Terminal bell"
	case store.SettingNotifications:
		return "Desktop notifications"
	case store.SettingFocusModeEnabled:
		return "Focus mode"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingWorkDuration, store.SettingShortBreak, store.SettingLongBreak:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.SettingSoundEnabled, store.SettingVibrationEnabled,
		store.SettingNotifications, store.SettingFocusModeEnabled:
		if v == "true" {
			return "on"
		}
		return "off"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
