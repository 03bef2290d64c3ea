// Package app is the terminal front end: the root Bubble Tea model that
// frames whichever screen the session resolves to.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/router"
	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/screens/admin"
	"github.com/mirrorsensei/sensei/internal/screens/login"
	"github.com/mirrorsensei/sensei/internal/screens/unauthorized"
	"github.com/mirrorsensei/sensei/internal/screens/user"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/tutor"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

// Deps holds the dependencies the TUI needs.
type Deps struct {
	Service *tutor.Service
	Session *session.Session
}

var defaultHints = []layout.KeyHint{
	{Key: "Ctrl+C", Description: "Quit"},
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	sess   *session.Session
	width  int
	height int
}

func newAppModel(deps Deps) AppModel {
	sess := deps.Session
	factories := map[session.Screen]router.Factory{
		session.ScreenUser:         func() screen.Screen { return user.New(deps.Service, sess) },
		session.ScreenLogin:        func() screen.Screen { return login.New(sess) },
		session.ScreenAdmin:        func() screen.Screen { return admin.New(deps.Service, sess) },
		session.ScreenUnauthorized: func() screen.Screen { return unauthorized.New(sess) },
	}
	return AppModel{
		router: router.New(sess, factories),
		sess:   sess,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status summarises the study selection for the header.
func (m AppModel) status() string {
	st := m.sess.State()
	s := fmt.Sprintf("%s · %s · %s", st.Language, st.Category, st.Level)
	if st.Authenticated {
		s = theme.Badge.Render("ADMIN") + " " + s
	}
	return s
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	hints := defaultHints
	if active != nil {
		title = active.Title()
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}

	header := layout.RenderHeader(title, m.status(), m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(newAppModel(deps), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
