package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
)

// Factory builds the screen for one session.Screen value.
type Factory func() screen.Screen

// Router shows the screen the session resolves to. Screens change the
// session (login, logout, navigation) and the router follows: after every
// update it compares Session.Screen with the screen on display and swaps
// in a fresh one when they differ.
type Router struct {
	sess      *session.Session
	factories map[session.Screen]Factory
	current   session.Screen
	active    screen.Screen
}

// New creates a Router. Call Init before the first Update.
func New(sess *session.Session, factories map[session.Screen]Factory) *Router {
	return &Router{sess: sess, factories: factories}
}

// Init activates the screen for the session's current state.
func (r *Router) Init() tea.Cmd {
	return r.sync()
}

// Active returns the screen on display.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Current returns which screen is on display.
func (r *Router) Current() session.Screen {
	return r.current
}

// Update forwards a message to the active screen, then follows any
// session transition it caused.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if r.active != nil {
		r.active, cmd = r.active.Update(msg)
	}
	return tea.Batch(cmd, r.sync())
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}

func (r *Router) sync() tea.Cmd {
	want := r.sess.Screen()
	if r.active != nil && want == r.current {
		return nil
	}
	build, ok := r.factories[want]
	if !ok {
		return nil
	}
	r.current = want
	r.active = build()
	return r.active.Init()
}
