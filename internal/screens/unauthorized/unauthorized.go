// Package unauthorized is shown when the admin view is requested without
// signing in.
package unauthorized

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

type UnauthorizedScreen struct {
	sess *session.Session
}

var _ screen.Screen = (*UnauthorizedScreen)(nil)
var _ screen.KeyHintProvider = (*UnauthorizedScreen)(nil)

func New(sess *session.Session) *UnauthorizedScreen {
	return &UnauthorizedScreen{sess: sess}
}

func (u *UnauthorizedScreen) Init() tea.Cmd { return nil }

func (u *UnauthorizedScreen) Title() string { return "Unauthorized" }

func (u *UnauthorizedScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back to study"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (u *UnauthorizedScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter":
			u.sess.OpenLogin()
		case "esc":
			u.sess.Navigate(session.ViewUser)
		}
	}
	return u, nil
}

func (u *UnauthorizedScreen) View(width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Foreground(theme.Error).Render("Unauthorized"),
		"",
		theme.Body.Render("The admin panel needs an admin sign-in."),
		"",
		theme.Hint.Render("Enter to sign in  ·  Esc to go back"),
	)
	return components.CenteredCard(content, width, height)
}
