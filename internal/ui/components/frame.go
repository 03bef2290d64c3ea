package components

import (
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

// CenteredCard renders content in a rounded card centered within the
// given dimensions.
func CenteredCard(content string, width, height int) string {
	card := theme.Card.
		BorderForeground(theme.Primary).
		Align(lipgloss.Center).
		Padding(1, 4).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// Pane frames a titled region of fixed outer size.
func Pane(title, body string, width, height int, focused bool) string {
	style := theme.Panel
	if focused {
		style = theme.FocusedPanel
	}
	inner := lipgloss.JoinVertical(lipgloss.Left, theme.Label.Render(title), body)
	return style.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(max(height, 1)).
		Render(inner)
}
