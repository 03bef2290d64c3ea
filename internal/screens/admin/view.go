package admin

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

func (a *AdminScreen) View(width, height int) string {
	browsing := a.mode == modeBrowse

	tabs := lipgloss.JoinVertical(lipgloss.Left,
		a.groups.View(browsing),
		"",
		a.subs.View(browsing),
	)

	key := a.selectionKey()
	var state string
	switch _, ok := a.prompts[key]; {
	case !a.loaded:
		state = theme.Hint.Render("Loading prompts...")
	case ok:
		state = theme.SuccessText.Render("Saved")
	default:
		state = theme.Hint.Render("Not set, the built-in instructions apply")
	}
	info := fmt.Sprintf("%s  %s", theme.Label.Render("Key: "+key), state)

	save := components.Button{
		Key:      "Ctrl+S",
		Label:    "Save prompt",
		Disabled: !a.loaded,
		Busy:     a.saving,
		BusyText: "Saving...",
	}.View()

	var status string
	switch {
	case a.status == "" || a.saving:
	case a.statusErr:
		status = theme.ErrorText.Render(a.status)
	default:
		status = theme.SuccessText.Render(a.status)
	}

	used := lipgloss.Height(tabs) + 2 + 2 // info and status rows
	editorHeight := max(height-used-2, 3)
	a.editor.SetWidth(max(width-6, 10))
	a.editor.SetHeight(max(editorHeight-3, 1))

	title := "Prompt"
	if !browsing {
		title = "Prompt (editing)"
	}
	editor := components.Pane(title, a.editor.View(), width, editorHeight, !browsing)

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		info,
		editor,
		save+"  "+status,
	)
}
