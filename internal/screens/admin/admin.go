// Package admin is the prompt editor shown to a signed-in administrator.
package admin

import (
	"context"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/mirrorsensei/sensei/internal/screen"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/tutor"
	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
)

// levelsGroup is the last top-level tab; it edits level prompts.
const levelsGroup = "Levels"

const (
	savedText     = "Prompt saved successfully!"
	saveErrorText = "Error saving prompt"
	loadErrorText = "Could not load prompts"
)

type mode int

const (
	modeBrowse mode = iota
	modeEdit
)

// Service is what the screen needs from tutor.Service.
type Service interface {
	Prompts(ctx context.Context) (tutor.PromptSet, error)
	SaveCategoryPrompt(ctx context.Context, sess *session.Session, category study.Category, subCategory, text string) error
	SaveLevelPrompt(ctx context.Context, sess *session.Session, level study.Level, text string) error
}

var _ Service = (*tutor.Service)(nil)

type promptsLoadedMsg struct {
	Set tutor.PromptSet
	Err error
}

type promptSavedMsg struct {
	Key string
	Err error
}

// AdminScreen lets the administrator pick a category/sub-category or a
// level and overwrite its prompt.
type AdminScreen struct {
	svc  Service
	sess *session.Session

	groups components.Tabs
	subs   components.Tabs
	editor textarea.Model
	mode   mode

	// prompts maps storage keys to the saved prompt text.
	prompts map[string]string
	loaded  bool

	saving    bool
	status    string
	statusErr bool
}

var _ screen.Screen = (*AdminScreen)(nil)
var _ screen.KeyHintProvider = (*AdminScreen)(nil)

func New(svc Service, sess *session.Session) *AdminScreen {
	groups := make([]string, 0, len(study.Categories)+1)
	for _, c := range study.Categories {
		groups = append(groups, string(c))
	}
	groups = append(groups, levelsGroup)

	ed := textarea.New()
	ed.Placeholder = "Write the instructions Sensei should follow for this selection..."
	ed.ShowLineNumbers = false

	a := &AdminScreen{
		svc:     svc,
		sess:    sess,
		groups:  components.NewTabs(groups),
		editor:  ed,
		prompts: make(map[string]string),
	}
	a.resetSubs()
	return a
}

func (a *AdminScreen) Init() tea.Cmd {
	return a.load()
}

func (a *AdminScreen) Title() string {
	return "Prompt Manager"
}

func (a *AdminScreen) KeyHints() []layout.KeyHint {
	if a.mode == modeEdit {
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Esc", Description: "Stop editing"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Category"},
		{Key: "↑↓", Description: "Sub-category"},
		{Key: "Enter", Description: "Edit"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Ctrl+L", Description: "Logout"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (a *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case promptsLoadedMsg:
		if msg.Err != nil {
			a.setStatus(loadErrorText, true)
			return a, nil
		}
		a.loaded = true
		a.prompts = make(map[string]string, len(msg.Set.Category)+len(msg.Set.Level))
		for _, p := range msg.Set.Category {
			a.prompts[p.ID] = p.Prompt
		}
		for _, p := range msg.Set.Level {
			a.prompts[p.ID] = p.Prompt
		}
		if a.mode == modeBrowse {
			a.fillEditor()
		}
		return a, nil

	case promptSavedMsg:
		a.saving = false
		if msg.Err != nil {
			a.setStatus(saveErrorText, true)
			return a, nil
		}
		a.setStatus(savedText, false)
		return a, a.load()

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+s":
			return a, a.save()
		case "ctrl+l":
			a.sess.Logout()
			return a, nil
		}
		if a.mode == modeEdit {
			return a.updateEdit(msg)
		}
		return a.updateBrowse(msg)
	}

	if a.mode == modeEdit {
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *AdminScreen) updateBrowse(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "right", "l":
		var changed bool
		if a.groups, changed = a.groups.Update(msg); changed {
			a.resetSubs()
			a.fillEditor()
		}
	case "up", "k":
		if a.subs.Move(-1) {
			a.fillEditor()
		}
	case "down", "j":
		if a.subs.Move(1) {
			a.fillEditor()
		}
	case "enter", "e":
		a.mode = modeEdit
		a.status = ""
		return a, a.editor.Focus()
	}
	return a, nil
}

func (a *AdminScreen) updateEdit(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		a.mode = modeBrowse
		a.editor.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

// resetSubs rebuilds the second row of tabs for the selected group.
func (a *AdminScreen) resetSubs() {
	if a.groups.Current() == levelsGroup {
		items := make([]string, len(study.Levels))
		for i, l := range study.Levels {
			items[i] = string(l)
		}
		a.subs = components.NewTabs(items)
		return
	}
	a.subs = components.NewTabs(study.SubCategories(study.Category(a.groups.Current())))
}

// selectionKey is the storage key of the prompt being edited.
func (a *AdminScreen) selectionKey() string {
	if a.groups.Current() == levelsGroup {
		return study.LevelPromptKey(study.Level(a.subs.Current()))
	}
	return study.CategoryPromptKey(study.Category(a.groups.Current()), a.subs.Current())
}

// fillEditor loads the saved prompt for the selection, discarding unsaved
// edits.
func (a *AdminScreen) fillEditor() {
	a.editor.SetValue(a.prompts[a.selectionKey()])
	a.editor.MoveToBegin()
}

func (a *AdminScreen) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

func (a *AdminScreen) load() tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		set, err := svc.Prompts(context.Background())
		return promptsLoadedMsg{Set: set, Err: err}
	}
}

func (a *AdminScreen) save() tea.Cmd {
	if a.saving {
		return nil
	}
	a.saving = true
	a.setStatus("", false)

	svc, sess := a.svc, a.sess
	text := a.editor.Value()
	key := a.selectionKey()
	group, sub := a.groups.Current(), a.subs.Current()

	return func() tea.Msg {
		var err error
		if group == levelsGroup {
			err = svc.SaveLevelPrompt(context.Background(), sess, study.Level(sub), text)
		} else {
			err = svc.SaveCategoryPrompt(context.Background(), sess, study.Category(group), sub, text)
		}
		return promptSavedMsg{Key: key, Err: err}
	}
}
