package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and Sensei styling.
type TextInput struct {
	Model    textinput.Model
	Label    string
	Disabled bool
}

// NewTextInput creates a blurred, labeled text input.
func NewTextInput(label, placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti, Label: label}
}

// NewMaskedInput creates an input that echoes a mask instead of the text.
func NewMaskedInput(label, placeholder string, charLimit int) TextInput {
	t := NewTextInput(label, placeholder, charLimit)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

func (t *TextInput) Blur() {
	t.Model.Blur()
}

func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update forwards msg to the input unless it is disabled.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.Disabled {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the input.
func (t TextInput) View(width int) string {
	t.Model.SetWidth(max(width-4, 1))
	label := theme.Label.Render(t.Label)
	if t.Disabled {
		label = theme.Disabled.Render(t.Label + " (busy)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, t.Model.View())
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

func (t *TextInput) Reset() {
	t.Model.Reset()
}
