package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// drain runs cmd and every command it batches, returning the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

type fixture struct {
	screen *UserScreen
	sess   *session.Session
	mock   *llm.MockProvider
	mem    *store.Memory
}

func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()
	mem := store.NewMemory()
	mock := llm.NewMockProvider(responses...)
	svc := tutor.NewService(mem.PromptRepo(), mem.HistoryRepo(), tutor.NewGenerator(mock, tutor.DefaultConfig(), nil), nil)
	sess := session.New("tui", auth.NewPlaceholder())
	s := New(svc, sess)
	s.Init()
	return &fixture{screen: s, sess: sess, mock: mock, mem: mem}
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	var sc screen.Screen
	var cmd tea.Cmd
	sc, cmd = f.screen.Update(msg)
	f.screen = sc.(*UserScreen)
	return cmd
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.send(keyPress(r))
	}
}

// settle feeds the messages of cmd back into the screen until nothing is
// left to run.
func (f *fixture) settle(cmd tea.Cmd) {
	queue := drain(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		queue = append(queue, drain(f.send(msg))...)
	}
}

func TestTitleAndHints(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Study", f.screen.Title())
	assert.NotEmpty(t, f.screen.KeyHints())
}

func TestSubmitStudy(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "Daffodils is about joy."})

	f.typeText("Explain imagery in Daffodils")
	cmd := f.send(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, f.screen.inflight[session.OpStudy])
	assert.True(t, f.screen.query.Disabled)

	f.settle(cmd)

	assert.False(t, f.screen.inflight[session.OpStudy])
	assert.False(t, f.screen.query.Disabled)
	assert.Empty(t, f.screen.query.Value())
	assert.Equal(t, "Daffodils is about joy.", f.sess.Response())

	req, ok := f.mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Explain imagery in Daffodils", req.Messages[0].Content)

	require.Len(t, f.screen.history, 1)
	assert.Equal(t, "Explain imagery in Daffodils", f.screen.history[0].Query)

	view := f.screen.View(120, 40)
	assert.Contains(t, view, "Daffodils is about joy.")
}

func TestSubmitStudySendsQueryUntrimmed(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "ok"})

	f.typeText("  Explain Daffodils  ")
	f.settle(f.send(specialKey(tea.KeyEnter)))

	req, ok := f.mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "  Explain Daffodils  ", req.Messages[0].Content)
	require.Len(t, f.screen.history, 1)
	assert.Equal(t, "  Explain Daffodils  ", f.screen.history[0].Query)
}

func TestSubmitStudyBackendFailure(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("offline")}})

	f.typeText("Explain")
	f.settle(f.send(specialKey(tea.KeyEnter)))

	assert.Equal(t, tutor.StudyUnavailableText, f.sess.Response())
	assert.False(t, f.screen.busy())
	assert.Empty(t, f.sess.State().Pending)
}

func TestEmptyQueryDoesNothing(t *testing.T) {
	f := newFixture(t)
	f.typeText("   ")
	assert.Nil(t, f.send(specialKey(tea.KeyEnter)))
	assert.Equal(t, 0, f.mock.CallCount())
}

func TestSecondSubmitWhilePendingIsIgnored(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "one"})
	f.typeText("first")
	first := f.send(specialKey(tea.KeyEnter))
	require.NotNil(t, first)

	assert.Nil(t, f.send(specialKey(tea.KeyEnter)))

	f.settle(first)
	assert.Equal(t, 1, f.mock.CallCount())
}

func TestQADisabledUntilResponse(t *testing.T) {
	f := newFixture(t,
		llm.MockResponse{Text: "Wordsworth wrote Daffodils."},
		llm.MockResponse{Text: "Wordsworth."},
	)

	f.send(specialKey(tea.KeyTab)) // translate
	f.send(specialKey(tea.KeyTab)) // qa
	require.Equal(t, fieldQA, f.screen.focus)
	f.typeText("Who wrote it?")
	assert.Nil(t, f.send(specialKey(tea.KeyEnter)))
	assert.Empty(t, f.screen.qa.Value())
	assert.Contains(t, f.screen.View(120, 40), "ask a study question first")

	// Back to the query field and ask first.
	f.send(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	f.send(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	require.Equal(t, fieldQuery, f.screen.focus)
	f.typeText("Daffodils")
	f.settle(f.send(specialKey(tea.KeyEnter)))

	f.send(specialKey(tea.KeyTab))
	f.send(specialKey(tea.KeyTab))
	f.typeText("Who wrote it?")
	f.settle(f.send(specialKey(tea.KeyEnter)))

	assert.Equal(t, "Wordsworth.", f.sess.State().Answer)
	req, _ := f.mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, "Wordsworth wrote Daffodils.")
}

func TestTranslateUsesInverseLanguage(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "Hello world"})
	f.send(ctrlKey('t'))
	require.Equal(t, study.Bengali, f.sess.State().Language)

	f.send(specialKey(tea.KeyTab))
	f.typeText("ওহে বিশ্ব")
	f.settle(f.send(specialKey(tea.KeyEnter)))

	assert.Equal(t, "Hello world", f.sess.State().Translation)
	assert.Empty(t, f.screen.translate.Value())
	req, _ := f.mock.LastCall()
	assert.True(t, strings.Contains(req.Messages[0].Content, "into clear, academic English"))
}

func TestSelectorsUpdateSession(t *testing.T) {
	f := newFixture(t)

	f.send(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	require.Equal(t, fieldLevel, f.screen.focus)
	f.send(specialKey(tea.KeyRight))
	f.send(specialKey(tea.KeyRight))

	f.send(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	require.Equal(t, fieldCategory, f.screen.focus)
	f.send(specialKey(tea.KeyLeft))

	cat, level, _ := f.sess.Preferences()
	assert.Equal(t, study.CategoryExam, cat)
	assert.Equal(t, study.Level3, level)
}

func TestCtrlAOpensLogin(t *testing.T) {
	f := newFixture(t)
	f.send(ctrlKey('a'))
	assert.Equal(t, session.ScreenLogin, f.sess.Screen())
}

func TestHistorySearchReloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.mem.HistoryRepo()
	_, err := h.Append(ctx, store.HistoryEntry{Query: "Daffodils imagery", Response: "…", Category: study.CategoryPoem, Level: study.Level1})
	require.NoError(t, err)
	_, err = h.Append(ctx, store.HistoryEntry{Query: "Macbeth act 1", Response: "…", Category: study.CategoryDrama, Level: study.Level2})
	require.NoError(t, err)

	for range 3 {
		f.send(specialKey(tea.KeyTab))
	}
	require.Equal(t, fieldSearch, f.screen.focus)

	f.send(keyPress('m'))
	f.send(keyPress('a'))
	f.send(keyPress('c'))
	f.settle(f.screen.loadHistory(f.screen.search.Value()))

	require.Len(t, f.screen.history, 1)
	assert.Equal(t, "Macbeth act 1", f.screen.history[0].Query)
}

func TestStaleHistoryResultsAreDropped(t *testing.T) {
	f := newFixture(t)
	f.screen.search.SetValue("new")
	f.send(historyLoadedMsg{Search: "old", Items: []study.HistoryItem{{Query: "stale"}}})
	assert.Empty(t, f.screen.history)
}

func TestRestoresSessionResults(t *testing.T) {
	f := newFixture(t)
	f.sess.SetResponse("Earlier answer")
	s := New(nil, f.sess)
	assert.Contains(t, s.View(120, 40), "Earlier answer")
}
