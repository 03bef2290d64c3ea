package login

import (
	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

const bannerArt = `
 ███████╗███████╗███╗   ██╗███████╗███████╗██╗
 ██╔════╝██╔════╝████╗  ██║██╔════╝██╔════╝██║
 ███████╗█████╗  ██╔██╗ ██║███████╗█████╗  ██║
 ╚════██║██╔══╝  ██║╚██╗██║╚════██║██╔══╝  ██║
 ███████║███████╗██║ ╚████║███████║███████╗██║
 ╚══════╝╚══════╝╚═╝  ╚═══╝╚══════╝╚══════╝╚═╝`

const bannerCompact = "S E N S E I"

// renderBanner returns the banner, or a compact fallback when the space is
// narrower than 52 columns or shorter than 30 rows.
func renderBanner(width, height int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 52 || height < 30 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
