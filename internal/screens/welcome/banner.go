package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/theme"
)

const bannerArt = `
 ██████╗██╗██╗  ██╗██╗   ██╗██╗
██╔════╝██║██║  ██║██║   ██║██║
██║     ██║███████║██║   ██║██║
██║     ██║██╔══██║██║   ██║██║
╚██████╗██║██║  ██║╚██████╔╝██║
 ╚═════╝╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═╝`

const bannerCompact = "C I H U I"

// bannerWidth is the column count of bannerArt.
const bannerWidth = 32

// RenderBanner returns the CIHUI banner styled in the primary color.
// Terminals narrower than the art get the spaced-letter fallback.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
