package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

func newModel(t *testing.T) (AppModel, *session.Session) {
	t.Helper()
	mem := store.NewMemory()
	gen := tutor.NewGenerator(llm.NewMockProvider(), tutor.DefaultConfig(), nil)
	sess := session.New("tui", auth.NewPlaceholder())
	m := newAppModel(Deps{Service: tutor.NewService(mem.PromptRepo(), mem.HistoryRepo(), gen, nil), Session: sess})
	m.Init()
	return m, sess
}

func resize(m AppModel, w, h int) AppModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(AppModel)
}

func TestFramesUserScreen(t *testing.T) {
	m, _ := newModel(t)
	m = resize(m, 120, 40)

	view := m.render()
	assert.Contains(t, view, "Mirror Sensei")
	assert.Contains(t, view, "Study")
	assert.Contains(t, view, "EN · Poem · Level 1")
}

func TestTooSmall(t *testing.T) {
	m, _ := newModel(t)
	m = resize(m, 60, 20)
	assert.Contains(t, m.render(), "Terminal too small")
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAdminBadgeAfterLogin(t *testing.T) {
	m, sess := newModel(t)
	m = resize(m, 120, 40)

	m.Update(tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl})
	assert.Equal(t, session.ScreenLogin, m.router.Current())
	assert.Contains(t, m.render(), "Admin Login")

	_, err := sess.Login(t.Context(), auth.Credentials{Username: "Hacker", Passcode: "444"})
	require.NoError(t, err)
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, session.ScreenAdmin, m.router.Current())
	assert.Contains(t, m.render(), "ADMIN")
}
