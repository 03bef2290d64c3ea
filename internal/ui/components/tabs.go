package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

// Tabs is a horizontal single-choice selector.
type Tabs struct {
	Items    []string
	Selected int
}

// NewTabs creates tabs with the first item selected.
func NewTabs(items []string) Tabs {
	return Tabs{Items: items}
}

// Update moves the selection with left/right. It reports whether the
// selection changed.
func (t Tabs) Update(msg tea.Msg) (Tabs, bool) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(t.Items) == 0 {
		return t, false
	}
	switch kmsg.String() {
	case "left", "h":
		return t, t.Move(-1)
	case "right", "l":
		return t, t.Move(1)
	}
	return t, false
}

// Move shifts the selection by delta, wrapping at both ends. It reports
// whether the selection changed.
func (t *Tabs) Move(delta int) bool {
	n := len(t.Items)
	if n == 0 {
		return false
	}
	prev := t.Selected
	t.Selected = ((t.Selected+delta)%n + n) % n
	return prev != t.Selected
}

// Current returns the selected item, or "" when there are none.
func (t Tabs) Current() string {
	if t.Selected < 0 || t.Selected >= len(t.Items) {
		return ""
	}
	return t.Items[t.Selected]
}

// Select selects item if present.
func (t *Tabs) Select(item string) {
	for i, it := range t.Items {
		if it == item {
			t.Selected = i
			return
		}
	}
}

// View renders the tabs; focused highlights the selection more strongly.
func (t Tabs) View(focused bool) string {
	parts := make([]string, len(t.Items))
	for i, item := range t.Items {
		switch {
		case i == t.Selected && focused:
			parts[i] = theme.ButtonActive.Render(item)
		case i == t.Selected:
			parts[i] = theme.Selected.Render("[" + item + "]")
		default:
			parts[i] = theme.Unselected.Render(" " + item + " ")
		}
	}
	return strings.Join(parts, " ")
}
