package components

import (
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

// Button is a key-triggered action label. Busy replaces the label with a
// progress text while the action runs.
type Button struct {
	Key      string
	Label    string
	Disabled bool
	Busy     bool
	BusyText string
}

// View renders the button.
func (b Button) View() string {
	switch {
	case b.Busy:
		return theme.Hint.Render(b.BusyText)
	case b.Disabled:
		return theme.Disabled.Render(b.Key + " ▸ " + b.Label)
	default:
		return theme.ButtonInactive.Render(b.Key + " ▸ " + b.Label)
	}
}
