package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyboost/internal/auth"
	"github.com/sadopc/studyboost/internal/config"
	"github.com/sadopc/studyboost/internal/export"
	"github.com/sadopc/studyboost/internal/logging"
	"github.com/sadopc/studyboost/internal/notify"
	"github.com/sadopc/studyboost/internal/stats"
	"github.com/sadopc/studyboost/internal/store"
	"github.com/sadopc/studyboost/internal/timer"
)

// App is the root Bubble Tea model.
type App struct {
	cfg   *config.Config
	store *store.Store
	auth  *auth.Service
	stats *stats.Service
	snaps *timer.SnapshotStore

	user   *store.User
	engine *timer.Engine
	recon  *timer.Reconciler

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	login      loginModel
	timerView  timerModel
	statistics statisticsModel
	focus      focusModel
	settings   settingsModel

	help   help.Model
	status string
}

func NewApp(cfg *config.Config, s *store.Store, authSvc *auth.Service) *App {
	h := help.New()
	h.ShowAll = false

	a := &App{
		cfg:        cfg,
		store:      s,
		auth:       authSvc,
		stats:      stats.New(s),
		snaps:      timer.NewSnapshotStore(cfg.StateDir, s),
		activeView: viewTimer,
		login:      newLoginModel(authSvc),
		statistics: newStatisticsModel(),
		focus:      newFocusModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
	if u := authSvc.Current(); u != nil {
		a.attachUser(u)
	}
	return a
}

// attachUser wires the timer stack for a signed-in user: engine, dispatcher,
// reconciler, and a restore of any session persisted before the last exit.
func (a *App) attachUser(u *store.User) {
	a.user = u

	dispatcher := notify.New(a.prefsFor(u.ID), ringBell)
	a.engine = timer.NewEngine(timer.SystemClock, u.ID, a.snaps, a.stats, dispatcher, policyFor(a.store, u.ID))
	if tr := a.engine.Restore(); tr != nil {
		a.status = transitionStatus(tr)
	}

	a.recon = timer.NewReconciler(a.engine)
	if err := a.recon.Start(); err != nil {
		logging.Errorf("start reconciler", err)
		a.recon = nil
	}

	a.timerView = newTimerModel(a.engine, a.store, u.ID)
	a.focus.userID = u.ID
	a.settings.userID = u.ID
}

// detachUser tears the timer stack down in reverse order of acquisition.
func (a *App) detachUser() {
	if a.recon != nil {
		logging.Errorf("close reconciler", a.recon.Close())
		a.recon = nil
	}
	a.engine = nil
	a.user = nil
	logging.Errorf("sign out", a.auth.SignOut())
}

// ringBell is the terminal stand-in for the vibration channel.
func ringBell() {
	os.Stdout.WriteString("\a")
}

// prefsFor reads the user's notification toggles from settings and applies
// the focus-mode suppression.
func (a *App) prefsFor(userID string) func() notify.Prefs {
	s := a.store
	return func() notify.Prefs {
		p := notify.Prefs{
			Sound:     boolSetting(s, userID, store.SettingSoundEnabled),
			Vibration: boolSetting(s, userID, store.SettingVibrationEnabled),
			Desktop:   boolSetting(s, userID, store.SettingNotifications),
		}
		if fm, err := s.GetFocusMode(userID); err == nil && fm.Enabled && fm.BlockNotifications {
			p.SuppressDesktop = true
		}
		return p
	}
}

// policyFor reads the user's interval settings at completion time so edits
// apply from the next session onward.
func policyFor(s *store.Store, userID string) func() timer.Policy {
	return func() timer.Policy {
		pol := timer.DefaultPolicy
		if n, ok := intSetting(s, userID, store.SettingWorkDuration); ok {
			pol.WorkSeconds = n
		}
		if n, ok := intSetting(s, userID, store.SettingShortBreak); ok {
			pol.ShortBreakSeconds = n
		}
		if n, ok := intSetting(s, userID, store.SettingLongBreak); ok {
			pol.LongBreakSeconds = n
		}
		if n, ok := intSetting(s, userID, store.SettingCyclesBeforeLong); ok {
			pol.CyclesBeforeLongBreak = n
		}
		return pol
	}
}

func intSetting(s *store.Store, userID, key string) (int, bool) {
	v, err := s.GetSetting(userID, key)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func boolSetting(s *store.Store, userID, key string) bool {
	v, err := s.GetSetting(userID, key)
	if err != nil {
		return false
	}
	return v == "true"
}

func transitionStatus(tr *timer.Transition) string {
	if tr.Finished.Kind == store.KindFocus {
		if tr.Next.LongBreak {
			return "Cycle complete! Long break time"
		}
		return "Cycle complete! Short break time"
	}
	return fmt.Sprintf("Break over! Starting cycle %d", tr.Next.CycleIndex)
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.tickCmd()}
	if a.user == nil {
		cmds = append(cmds, a.login.start())
	} else {
		cmds = append(cmds, a.timerView.refresh())
	}
	if a.recon != nil {
		cmds = append(cmds, waitForSnapshotChange(a.recon))
	}
	return tea.Batch(cmds...)
}

func (a *App) tickCmd() tea.Cmd {
	epoch := 0
	if a.engine != nil {
		epoch = a.engine.Epoch()
	}
	return tea.Tick(a.cfg.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg{at: t, epoch: epoch}
	})
}

func waitForSnapshotChange(r *timer.Reconciler) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-r.Events(); !ok {
			return nil
		}
		return snapshotChangedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4
		a.login.setSize(a.width, contentHeight)
		a.timerView.setSize(a.width, contentHeight)
		a.statistics.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case signedInMsg:
		a.attachUser(msg.user)
		a.activeView = viewTimer
		a.status = "Welcome, " + msg.user.DisplayName
		// The tick chain armed at Init keeps running and picks up the new
		// engine on its next round; arming another here would leave two
		// schedules racing.
		cmds := []tea.Cmd{a.timerView.refresh()}
		if a.recon != nil {
			cmds = append(cmds, waitForSnapshotChange(a.recon))
		}
		return a, tea.Batch(cmds...)

	case signedOutMsg:
		a.status = "Signed out"
		return a, a.login.start()

	case tickMsg:
		cmds := []tea.Cmd{a.tickCmd()}
		if a.engine != nil {
			if tr := a.engine.Tick(msg.epoch, msg.at); tr != nil {
				a.status = transitionStatus(tr)
				cmds = append(cmds, a.timerView.refresh())
			}
			a.timerView.observe(msg.at)
		}
		return a, tea.Batch(cmds...)

	case tea.FocusMsg, tea.ResumeMsg:
		return a, a.wake()

	case tea.BlurMsg, tea.SuspendMsg:
		if a.recon != nil {
			a.recon.Sleep()
		} else if a.engine != nil {
			a.engine.PersistNow()
		}
		return a, nil

	case snapshotChangedMsg:
		cmd := a.wake()
		var rearm tea.Cmd
		if a.recon != nil {
			rearm = waitForSnapshotChange(a.recon)
		}
		return a, tea.Batch(cmd, rearm)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	return a.updateActiveView(msg)
}

// wake reconciles displayed remaining time against the wall clock right now,
// without waiting for the next tick. An idle engine instead re-reads the
// snapshot, picking up a session started by another instance.
func (a *App) wake() tea.Cmd {
	if a.engine == nil {
		return nil
	}
	var tr *timer.Transition
	if a.engine.Phase() == timer.PhaseIdle {
		tr = a.engine.Restore()
	} else if a.recon != nil {
		tr = a.recon.Wake()
	} else {
		tr = a.engine.Reconcile(time.Now())
	}
	a.timerView.observe(time.Now())
	if tr != nil {
		a.status = transitionStatus(tr)
		return a.timerView.refresh()
	}
	return nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The login screen owns all input until someone is signed in.
	if a.user == nil {
		if key.Matches(msg, keys.Quit) && !a.login.formActive() {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}

	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	// If a child view is capturing input (e.g. form), delegate first.
	if a.isFormActive() {
		return a.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.SignOut):
		if a.engine != nil {
			a.engine.Stop()
		}
		a.detachUser()
		return a, func() tea.Msg { return signedOutMsg{} }
	case key.Matches(msg, keys.Quit):
		if a.engine != nil {
			a.engine.PersistNow()
		}
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewTimer
		return a, a.timerView.refresh()
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewStatistics
		return a, a.statistics.refresh(a.stats, a.user.ID)
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewFocus
		return a, a.focus.refresh(a.user.ID)
	case key.Matches(msg, keys.Tab4):
		a.activeView = viewSettings
		return a, a.settings.refresh(a.user.ID)
	case key.Matches(msg, keys.Tab):
		a.activeView = (a.activeView + 1) % 4
		return a, a.refreshCurrentView()
	}

	return a.updateActiveView(msg)
}

func (a *App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.timerView.refresh()
	case viewStatistics:
		return a.statistics.refresh(a.stats, a.user.ID)
	case viewFocus:
		return a.focus.refresh(a.user.ID)
	case viewSettings:
		return a.settings.refresh(a.user.ID)
	}
	return nil
}

func (a *App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.user == nil {
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	switch a.activeView {
	case viewTimer:
		a.timerView, cmd = a.timerView.update(msg)
	case viewStatistics:
		a.statistics, cmd = a.statistics.update(msg, a.stats, a.user.ID)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a *App) isFormActive() bool {
	switch a.activeView {
	case viewFocus:
		return a.focus.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a *App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	formats := []string{"CSV", "JSON", "PDF"}
	switch {
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
		return a, nil
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
		return a, nil
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(formats)-1 {
			a.exportCursor++
		}
		return a, nil
	case key.Matches(msg, keys.Enter):
		format := formats[a.exportCursor]
		return a, a.exportCmd(format)
	}
	return a, nil
}

func (a *App) exportCmd(format string) tea.Cmd {
	user := a.user
	st := a.store
	svc := a.stats
	return func() tea.Msg {
		sessions, err := st.ListSessions(user.ID, store.SessionFilter{Limit: 500})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export failed: %v", err), isError: true}
		}

		stamp := time.Now().Format("20060102-150405")
		var path string
		switch format {
		case "CSV":
			path = filepath.Join(".", "studyboost-"+stamp+".csv")
			err = export.ToCSV(sessions, path)
		case "JSON":
			path = filepath.Join(".", "studyboost-"+stamp+".json")
			err = export.ToJSON(sessions, path)
		case "PDF":
			days, derr := svc.Daily(user.ID, 30, time.Now())
			if derr != nil {
				return statusMsg{text: fmt.Sprintf("Export failed: %v", derr), isError: true}
			}
			limit := len(sessions)
			if limit > 20 {
				limit = 20
			}
			path = filepath.Join(".", "studyboost-"+stamp+".pdf")
			err = export.ToPDF(user, days, sessions[:limit], path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export failed: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (a *App) View() string {
	if a.user == nil {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timerView.view()
	case viewStatistics:
		content = a.statistics.view()
	case viewFocus:
		content = a.focus.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a *App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyboost")
	user := mutedStyle.Render(a.user.Email)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(user) - 6
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, " ", user, spacer, tabRow),
	)
}

func (a *App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Live countdown in the footer so it stays visible from any tab.
	timerInfo := ""
	if a.engine != nil {
		switch a.engine.Phase() {
		case timer.PhaseRunning:
			timerInfo = successStyle.Render(" ● " + formatClock(a.engine.Remaining(time.Now())))
		case timer.PhasePaused:
			timerInfo = warningStyle.Render(" ⏸ " + formatClock(a.engine.Remaining(time.Now())))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a *App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON", "PDF"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
