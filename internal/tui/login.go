package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyboost/internal/auth"
	"github.com/sadopc/studyboost/internal/store"
)

const (
	loginModeSignIn   = "signin"
	loginModeRegister = "register"
)

// loginModel gates the rest of the UI until someone is signed in.
type loginModel struct {
	auth   *auth.Service
	width  int
	height int

	form    *huh.Form
	active  bool
	errText string

	mode        *string
	email       *string
	password    *string
	displayName *string
}

func newLoginModel(authSvc *auth.Service) loginModel {
	mode, email, pass, name := loginModeSignIn, "", "", ""
	return loginModel{
		auth:        authSvc,
		mode:        &mode,
		email:       &email,
		password:    &pass,
		displayName: &name,
	}
}

func (l *loginModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

func (l loginModel) formActive() bool { return l.active }

func (l *loginModel) start() tea.Cmd {
	*l.password = ""

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("StudyBoost").
				Options(
					huh.NewOption("Sign in", loginModeSignIn),
					huh.NewOption("Create account", loginModeRegister),
				).Value(l.mode),
			huh.NewInput().Title("Email").Value(l.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(l.password),
		),
		huh.NewGroup(
			huh.NewInput().Title("Display name").
				Description("Leave empty to use the email prefix").
				Value(l.displayName),
		).WithHideFunc(func() bool { return *l.mode != loginModeRegister }),
	).WithShowHelp(true).WithShowErrors(true)

	l.active = true
	return l.form.Init()
}

func (l loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if failed, ok := msg.(loginFailedMsg); ok {
		l.errText = failed.text
		cmd := l.start()
		return l, cmd
	}

	if !l.active || l.form == nil {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.active = false
		return l, l.submit()
	}

	return l, cmd
}

func (l loginModel) submit() tea.Cmd {
	authSvc := l.auth
	mode, email, password, name := *l.mode, *l.email, *l.password, *l.displayName
	return func() tea.Msg {
		var user *store.User
		var err error
		if mode == loginModeRegister {
			user, err = authSvc.SignUp(email, password, name)
		} else {
			user, err = authSvc.SignIn(email, password)
		}
		if err != nil {
			return loginFailedMsg{text: loginErrorText(err)}
		}
		return signedInMsg{user: user}
	}
}

type loginFailedMsg struct {
	text string
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, store.ErrUserExists):
		return "An account with that email already exists"
	default:
		return err.Error()
	}
}

func (l loginModel) view() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyboost")
	subtitle := mutedStyle.Render("pomodoro timer")

	var body string
	if l.active && l.form != nil {
		body = l.form.View()
	} else {
		body = mutedStyle.Render("Signing in...")
	}

	var errLine string
	if l.errText != "" {
		errLine = errorStyle.Render(l.errText)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, title, subtitle, "", body, errLine)
	box := panelStyle.Render(content)

	if l.width == 0 {
		return box
	}
	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, box)
}
