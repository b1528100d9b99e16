package quiz

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/illustrate"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// SelectScreen lists the quiz kinds of an analysis. Kinds without
// questions are disabled.
type SelectScreen struct {
	deps     *screen.Deps
	analysis *vocab.Analysis
	art      *Illustrations
	menu     components.Menu
}

var _ screen.Screen = (*SelectScreen)(nil)

// NewSelect creates the quiz picker. Questions are illustrated from cache,
// which may be nil.
func NewSelect(deps *screen.Deps, a *vocab.Analysis, cache *illustrate.Cache) *SelectScreen {
	s := &SelectScreen{deps: deps, analysis: a, art: NewIllustrations(deps, a, cache)}
	items := make([]components.MenuItem, 0, len(vocab.AllKinds))
	for _, kind := range vocab.AllKinds {
		qs := a.Quizzes.Get(kind)
		items = append(items, components.MenuItem{
			Label:    fmt.Sprintf("%s (%d 題)", kind.Title(), len(qs)),
			Disabled: len(qs) == 0,
			Action:   func() tea.Cmd { return s.start(kind) },
		})
	}
	s.menu = components.NewMenu(items)
	return s
}

func (s *SelectScreen) start(kind vocab.QuizKind) tea.Cmd {
	q, err := New(s.deps, kind, s.analysis.Quizzes.Get(kind), s.art)
	if err != nil {
		return nil
	}
	return router.Push(q)
}

func (s *SelectScreen) Init() tea.Cmd {
	return nil
}

func (s *SelectScreen) Title() string {
	return "選擇測驗"
}

func (s *SelectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "Enter", Description: "開始"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *SelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SelectScreen) View(width, height int) string {
	title := theme.Title.Render("請選擇測驗類型")
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", s.menu.View())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
