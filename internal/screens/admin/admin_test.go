package admin

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

type fixture struct {
	screen *AdminScreen
	sess   *session.Session
	repo   store.PromptRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	repo := mem.PromptRepo()
	require.NoError(t, repo.PutCategoryPrompt(context.Background(), study.CategoryDrama, "Q & A", "Summarise the plot act by act."))

	svc := tutor.NewService(repo, mem.HistoryRepo(), nil, nil)
	sess := session.New("tui", auth.NewPlaceholder())
	sess.OpenLogin()
	ok, err := sess.Login(context.Background(), auth.Credentials{Username: "Hacker", Passcode: "444"})
	require.NoError(t, err)
	require.True(t, ok)

	a := New(svc, sess)
	a.Update(a.Init()())
	return &fixture{screen: a, sess: sess, repo: repo}
}

func (f *fixture) key(msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := f.screen.Update(msg)
	return cmd
}

func keyCode(code rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code} }

func ctrl(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl} }

// saveAndReload presses ctrl+s and feeds the save and reload results back.
func (f *fixture) saveAndReload(t *testing.T) {
	t.Helper()
	cmd := f.key(ctrl('s'))
	require.NotNil(t, cmd)
	_, reload := f.screen.Update(cmd())
	if reload != nil {
		f.screen.Update(reload())
	}
}

func TestStartsOnFirstCategory(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Poem_Line_by_Line", f.screen.selectionKey())
	assert.True(t, f.screen.loaded)
	assert.Empty(t, f.screen.editor.Value())
	assert.Contains(t, f.screen.View(120, 40), "Key: Poem_Line_by_Line")
}

func TestBrowsingFillsEditor(t *testing.T) {
	f := newFixture(t)
	f.key(keyCode(tea.KeyRight))
	assert.Equal(t, string(study.CategoryDrama), f.screen.groups.Current())

	for f.screen.subs.Current() != "Q & A" {
		f.key(keyCode(tea.KeyDown))
	}
	assert.Equal(t, "Summarise the plot act by act.", f.screen.editor.Value())
}

func TestLevelsGroup(t *testing.T) {
	f := newFixture(t)
	f.key(keyCode(tea.KeyLeft))
	require.Equal(t, levelsGroup, f.screen.groups.Current())
	assert.Equal(t, study.Levels[0], study.Level(f.screen.subs.Current()))
	f.key(keyCode(tea.KeyDown))
	assert.Equal(t, "Level_2", f.screen.selectionKey())
}

func TestEditAndSaveCategoryPrompt(t *testing.T) {
	f := newFixture(t)

	f.key(keyCode(tea.KeyEnter))
	require.Equal(t, modeEdit, f.screen.mode)
	for _, r := range "Explain line by line." {
		f.key(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	f.saveAndReload(t)

	assert.Equal(t, savedText, f.screen.status)
	assert.False(t, f.screen.statusErr)

	prompts, err := f.repo.ListCategoryPrompts(context.Background())
	require.NoError(t, err)
	var found bool
	for _, p := range prompts {
		if p.ID == "Poem_Line_by_Line" {
			found = true
			assert.Equal(t, "Explain line by line.", p.Prompt)
		}
	}
	assert.True(t, found)
	assert.Contains(t, f.screen.View(120, 40), savedText)
}

func TestSaveLevelPrompt(t *testing.T) {
	f := newFixture(t)
	f.key(keyCode(tea.KeyLeft))
	f.key(keyCode(tea.KeyDown))
	f.screen.editor.SetValue("Use undergraduate vocabulary.")
	f.saveAndReload(t)

	levels, err := f.repo.ListLevelPrompts(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, study.Level2, levels[0].Level)
	assert.Equal(t, "Use undergraduate vocabulary.", levels[0].Prompt)
}

func TestSaveAfterLogoutFails(t *testing.T) {
	f := newFixture(t)
	f.screen.editor.SetValue("text")
	cmd := f.key(ctrl('s'))
	require.NotNil(t, cmd)

	f.sess.Logout()
	_, reload := f.screen.Update(cmd())
	assert.Nil(t, reload)
	assert.Equal(t, saveErrorText, f.screen.status)
	assert.True(t, f.screen.statusErr)
}

func TestEscLeavesEditMode(t *testing.T) {
	f := newFixture(t)
	f.key(keyCode(tea.KeyEnter))
	f.key(keyCode(tea.KeyEscape))
	assert.Equal(t, modeBrowse, f.screen.mode)
	assert.False(t, f.screen.editor.Focused())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.key(ctrl('l'))
	assert.False(t, f.sess.Authenticated())
	assert.Equal(t, session.ScreenUser, f.sess.Screen())
}

type failingPrompts struct{ Service }

func (failingPrompts) Prompts(context.Context) (tutor.PromptSet, error) {
	return tutor.PromptSet{}, errors.New("db down")
}

func TestLoadFailure(t *testing.T) {
	sess := session.New("tui", auth.NewPlaceholder())
	a := New(failingPrompts{}, sess)
	a.Update(a.Init()())
	assert.Equal(t, loadErrorText, a.status)
	assert.False(t, a.loaded)
}
