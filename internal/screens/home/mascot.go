package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // vermilion
	MascotCelebrating                      // gold, star eyes; has saved inputs
	MascotAlert                            // amber, exclamation; no AI configured
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│詞 彙│
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│詞 彙│
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│詞 彙│
└─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch variant {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.ArcadeYellow
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
