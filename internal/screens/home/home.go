package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/history"
	"github.com/abhisek/cihui/internal/screens/images"
	"github.com/abhisek/cihui/internal/screens/input"
	"github.com/abhisek/cihui/internal/screens/settings"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
)

// Menu labels, in order.
const (
	LabelAnalyze  = "新的解析"
	LabelHistory  = "歷史紀錄"
	LabelImages   = "圖片管理"
	LabelSettings = "設定"
	LabelExit     = "離開"
)

const (
	itemAnalyze = iota
	itemHistory
	itemImages
	itemSettings
	itemExit
)

// HomeScreen is the main menu.
type HomeScreen struct {
	deps       *screen.Deps
	menu       components.Menu
	menuLabels []string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. Analysis is disabled without an analyzer.
func New(deps *screen.Deps) *HomeScreen {
	labels := []string{LabelAnalyze, LabelHistory, LabelImages, LabelSettings, LabelExit}

	items := []components.MenuItem{
		itemAnalyze: {Label: labels[itemAnalyze], Action: func() tea.Cmd {
			return router.Push(input.New(deps, ""))
		}},
		itemHistory: {Label: labels[itemHistory], Action: func() tea.Cmd {
			return router.Push(history.New(deps))
		}},
		itemImages: {Label: labels[itemImages], Action: func() tea.Cmd {
			return router.Push(images.New(deps, ""))
		}},
		itemSettings: {Label: labels[itemSettings], Action: func() tea.Cmd {
			return router.Push(settings.New(deps))
		}},
		itemExit: {Label: labels[itemExit], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	items[itemAnalyze].Disabled = deps.Analyzer == nil
	items[itemHistory].Disabled = deps.History == nil
	items[itemImages].Disabled = deps.Overrides == nil

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: labels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "Enter", Description: "確認"},
		{Key: "Ctrl+C", Description: "離開"},
	}
}

func (h *HomeScreen) stats() (inputs, imageSets int) {
	if h.deps.History != nil {
		inputs = h.deps.History.Len()
	}
	if h.deps.Overrides != nil {
		imageSets = len(h.deps.Overrides.VocabKeys())
	}
	return inputs, imageSets
}

func (h *HomeScreen) mascot(inputs int) MascotVariant {
	switch {
	case h.deps.Analyzer == nil:
		return MascotAlert
	case inputs > 0:
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)
	tiny := termHeight < layout.MinHeight

	cw := components.ContentWidth(width)
	inputs, imageSets := h.stats()

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(inputs), cw))
	}
	sections = append(sections, renderStatsBar(inputs, imageSets, h.deps.Analyzer != nil, cw, compact))
	if h.deps.Analyzer == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	disabled := make(map[int]bool)
	for i, item := range h.menu.Items {
		disabled[i] = item.Disabled
	}
	if tiny {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw, disabled))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw, disabled))
	}
	if h.deps.LatestVersion != "" {
		sections = append(sections, renderUpdateNote(h.deps.LatestVersion, cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "主選單"
}
