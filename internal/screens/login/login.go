// Package login is the admin sign-in screen.
package login

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

const formWidth = 44

type loginDoneMsg struct {
	OK  bool
	Err error
}

// LoginScreen asks for the admin username and passcode.
type LoginScreen struct {
	sess     *session.Session
	username components.TextInput
	passcode components.TextInput
	checking bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

func New(sess *session.Session) *LoginScreen {
	return &LoginScreen{
		sess:     sess,
		username: components.NewTextInput("Username", "admin username", 64),
		passcode: components.NewMaskedInput("Passcode", "passcode", 64),
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.username.Focus()
}

func (l *LoginScreen) Title() string {
	return "Admin Login"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.checking = false
		l.username.Disabled = false
		l.passcode.Disabled = false
		if !msg.OK {
			l.passcode.Reset()
		}
		return l, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			l.sess.Back()
			return l, nil
		case "tab", "shift+tab", "up", "down":
			return l, l.toggleFocus()
		case "enter":
			if l.username.Focused() && l.passcode.Value() == "" {
				return l, l.toggleFocus()
			}
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	if l.username.Focused() {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.passcode, cmd = l.passcode.Update(msg)
	}
	return l, cmd
}

func (l *LoginScreen) toggleFocus() tea.Cmd {
	if l.username.Focused() {
		l.username.Blur()
		return l.passcode.Focus()
	}
	l.passcode.Blur()
	return l.username.Focus()
}

func (l *LoginScreen) submit() tea.Cmd {
	if l.checking {
		return nil
	}
	l.checking = true
	l.username.Disabled = true
	l.passcode.Disabled = true

	creds := auth.Credentials{
		Username: l.username.Value(),
		Passcode: l.passcode.Value(),
	}
	sess := l.sess
	return func() tea.Msg {
		ok, err := sess.Login(context.Background(), creds)
		return loginDoneMsg{OK: ok, Err: err}
	}
}

func (l *LoginScreen) View(width, height int) string {
	var sections []string
	sections = append(sections,
		renderBanner(width, height),
		"",
		theme.Subtitle.Render("Admin access to the prompt editor"),
		"",
		l.username.View(formWidth),
		"",
		l.passcode.View(formWidth),
		"",
	)

	switch {
	case l.checking:
		sections = append(sections, theme.Hint.Render("Checking credentials..."))
	case l.sess.State().LoginError != "":
		sections = append(sections, theme.ErrorText.Render(l.sess.State().LoginError))
	default:
		sections = append(sections, theme.Hint.Render("Press Enter to sign in"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return components.CenteredCard(content, width, height)
}
