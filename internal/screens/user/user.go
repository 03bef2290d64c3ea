// Package user is the student's screen: study selection, the main query,
// translation, instant Q&A and the searchable history.
package user

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/tutor"
	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
)

type field int

const (
	fieldCategory field = iota
	fieldLevel
	fieldQuery
	fieldTranslate
	fieldQA
	fieldSearch
	fieldCount
)

// Service is what the screen needs from tutor.Service.
type Service interface {
	Ask(ctx context.Context, sess *session.Session, query string) (string, error)
	Translate(ctx context.Context, sess *session.Session, text string) (string, error)
	InstantQA(ctx context.Context, sess *session.Session, question string) (string, error)
	History(ctx context.Context, search string) ([]study.HistoryItem, error)
}

var _ Service = (*tutor.Service)(nil)

// UserScreen implements screen.Screen for the student view.
type UserScreen struct {
	svc  Service
	sess *session.Session

	category components.Tabs
	level    components.Tabs

	query     components.TextInput
	translate components.TextInput
	qa        components.TextInput
	search    components.TextInput
	focus     field

	inflight map[session.Op]bool
	spinner  spinner.Model
	response viewport.Model

	history    []study.HistoryItem
	historyErr string

	// shown is the response currently loaded into the viewport.
	shown string
}

var _ screen.Screen = (*UserScreen)(nil)
var _ screen.KeyHintProvider = (*UserScreen)(nil)

// New creates the screen. Results already held by the session (the last
// response, translation and answer) are shown again.
func New(svc Service, sess *session.Session) *UserScreen {
	cats := make([]string, len(study.Categories))
	for i, c := range study.Categories {
		cats[i] = string(c)
	}
	levels := make([]string, len(study.Levels))
	for i, l := range study.Levels {
		levels[i] = string(l)
	}

	s := &UserScreen{
		svc:       svc,
		sess:      sess,
		category:  components.NewTabs(cats),
		level:     components.NewTabs(levels),
		query:     components.NewTextInput("Ask Sensei", "e.g. Explain imagery in Daffodils", 2000),
		translate: components.NewTextInput("Translate", "Text to translate", 4000),
		qa:        components.NewTextInput("Instant Q&A", "Ask about the answer above", 1000),
		search:    components.NewTextInput("Search history", "Filter recent queries", 200),
		focus:     fieldQuery,
		inflight:  make(map[session.Op]bool),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		response:  viewport.New(),
	}

	s.response.SoftWrap = true

	st := sess.State()
	s.category.Select(string(st.Category))
	s.level.Select(string(st.Level))
	return s
}

func (s *UserScreen) Init() tea.Cmd {
	return tea.Batch(s.setFocus(fieldQuery), s.loadHistory(""))
}

func (s *UserScreen) Title() string {
	return "Study"
}

func (s *UserScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
	}
	switch s.focus {
	case fieldCategory, fieldLevel:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Change"})
	case fieldQuery, fieldTranslate, fieldQA:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	return append(hints,
		layout.KeyHint{Key: "PgUp/PgDn", Description: "Scroll"},
		layout.KeyHint{Key: "Ctrl+T", Description: "EN/BN"},
		layout.KeyHint{Key: "Ctrl+A", Description: "Admin"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (s *UserScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case studyDoneMsg:
		s.finish(session.OpStudy)
		if msg.Err == nil {
			s.query.Reset()
		}
		return s, s.loadHistory(s.search.Value())

	case translateDoneMsg:
		s.finish(session.OpTranslate)
		if msg.Err == nil {
			s.translate.Reset()
		}
		return s, nil

	case qaDoneMsg:
		s.finish(session.OpInstantQA)
		if msg.Err == nil {
			s.qa.Reset()
		}
		return s, nil

	case historyLoadedMsg:
		// Drop stale results from an earlier search term.
		if msg.Search != s.search.Value() {
			return s, nil
		}
		if msg.Err != nil {
			s.historyErr = "Could not load history"
			return s, nil
		}
		s.historyErr = ""
		s.history = msg.Items
		return s, nil

	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *UserScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return s, s.setFocus((s.focus + 1) % fieldCount)
	case "shift+tab":
		return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "ctrl+t":
		s.sess.ToggleLanguage()
		return s, nil
	case "ctrl+a":
		s.sess.OpenLogin()
		return s, nil
	case "pgup":
		s.response.HalfPageUp()
		return s, nil
	case "pgdown":
		s.response.HalfPageDown()
		return s, nil
	case "enter":
		switch s.focus {
		case fieldQuery:
			return s, s.submitStudy()
		case fieldTranslate:
			return s, s.submitTranslate()
		case fieldQA:
			return s, s.submitQA()
		}
		return s, nil
	}

	switch s.focus {
	case fieldCategory:
		var changed bool
		if s.category, changed = s.category.Update(msg); changed {
			c, _ := study.ParseCategory(s.category.Current())
			s.sess.SetCategory(c)
		}
		return s, nil
	case fieldLevel:
		var changed bool
		if s.level, changed = s.level.Update(msg); changed {
			l, _ := study.ParseLevel(s.level.Current())
			s.sess.SetLevel(l)
		}
		return s, nil
	}
	return s.forward(msg)
}

// forward sends msg to the focused input. A changed search term reloads
// the history.
func (s *UserScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case fieldQuery:
		s.query, cmd = s.query.Update(msg)
	case fieldTranslate:
		s.translate, cmd = s.translate.Update(msg)
	case fieldQA:
		if s.qaEnabled() {
			s.qa, cmd = s.qa.Update(msg)
		}
	case fieldSearch:
		before := s.search.Value()
		s.search, cmd = s.search.Update(msg)
		if s.search.Value() != before {
			cmd = tea.Batch(cmd, s.loadHistory(s.search.Value()))
		}
	}
	return s, cmd
}

func (s *UserScreen) setFocus(f field) tea.Cmd {
	s.focus = f
	inputs := map[field]*components.TextInput{
		fieldQuery:     &s.query,
		fieldTranslate: &s.translate,
		fieldQA:        &s.qa,
		fieldSearch:    &s.search,
	}
	var cmd tea.Cmd
	for k, in := range inputs {
		if k == f {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

// qaEnabled reports whether there is a main response to ask about.
func (s *UserScreen) qaEnabled() bool {
	return s.sess.Response() != ""
}

func (s *UserScreen) busy() bool {
	for _, v := range s.inflight {
		if v {
			return true
		}
	}
	return false
}

// start marks op in flight, disabling its input, and returns the spinner
// tick if the spinner was idle.
func (s *UserScreen) start(op session.Op) tea.Cmd {
	wasBusy := s.busy()
	s.inflight[op] = true
	s.inputFor(op).Disabled = true
	if wasBusy {
		return nil
	}
	return s.spinner.Tick
}

func (s *UserScreen) finish(op session.Op) {
	s.inflight[op] = false
	s.inputFor(op).Disabled = false
}

func (s *UserScreen) inputFor(op session.Op) *components.TextInput {
	switch op {
	case session.OpTranslate:
		return &s.translate
	case session.OpInstantQA:
		return &s.qa
	default:
		return &s.query
	}
}

func (s *UserScreen) submitStudy() tea.Cmd {
	q := s.query.Value()
	if strings.TrimSpace(q) == "" || s.inflight[session.OpStudy] {
		return nil
	}
	tick := s.start(session.OpStudy)
	svc, sess := s.svc, s.sess
	return tea.Batch(tick, func() tea.Msg {
		text, err := svc.Ask(context.Background(), sess, q)
		return studyDoneMsg{Text: text, Err: ignoreBusy(err)}
	})
}

func (s *UserScreen) submitTranslate() tea.Cmd {
	text := s.translate.Value()
	if strings.TrimSpace(text) == "" || s.inflight[session.OpTranslate] {
		return nil
	}
	tick := s.start(session.OpTranslate)
	svc, sess := s.svc, s.sess
	return tea.Batch(tick, func() tea.Msg {
		out, err := svc.Translate(context.Background(), sess, text)
		return translateDoneMsg{Text: out, Err: ignoreBusy(err)}
	})
}

func (s *UserScreen) submitQA() tea.Cmd {
	q := s.qa.Value()
	if strings.TrimSpace(q) == "" || !s.qaEnabled() || s.inflight[session.OpInstantQA] {
		return nil
	}
	tick := s.start(session.OpInstantQA)
	svc, sess := s.svc, s.sess
	return tea.Batch(tick, func() tea.Msg {
		out, err := svc.InstantQA(context.Background(), sess, q)
		return qaDoneMsg{Text: out, Err: ignoreBusy(err)}
	})
}

func (s *UserScreen) loadHistory(search string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		items, err := svc.History(context.Background(), search)
		return historyLoadedMsg{Search: search, Items: items, Err: err}
	}
}

// ignoreBusy treats a duplicate submission as already handled.
func ignoreBusy(err error) error {
	if errors.Is(err, tutor.ErrBusy) {
		return nil
	}
	return err
}
