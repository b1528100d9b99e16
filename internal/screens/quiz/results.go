package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/session"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// Results menu labels.
const (
	LabelRetry = "重新測驗錯題"
	LabelBack  = "返回"
)

// ResultsScreen shows the score of a finished round.
type ResultsScreen struct {
	deps    *screen.Deps
	session *session.Session
	result  session.Result
	art     *Illustrations
	menu    components.Menu
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// NewResults creates the results screen for a completed session.
func NewResults(deps *screen.Deps, sess *session.Session, res session.Result, art *Illustrations) *ResultsScreen {
	s := &ResultsScreen{deps: deps, session: sess, result: res, art: art}
	var items []components.MenuItem
	if !res.Perfect() {
		items = append(items, components.MenuItem{Label: LabelRetry, Action: s.retry})
	}
	items = append(items, components.MenuItem{Label: LabelBack, Action: func() tea.Cmd { return router.Pop }})
	s.menu = components.NewMenu(items)
	return s
}

// Result returns the summarized round.
func (s *ResultsScreen) Result() session.Result {
	return s.result
}

func (s *ResultsScreen) retry() tea.Cmd {
	next, err := s.session.RetryIncorrect(s.deps.RNG)
	if err != nil {
		return nil
	}
	return router.Replace(fromSession(s.deps, next, s.art))
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "測驗結果"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "Enter", Description: "確認"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ResultsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	headline := theme.Title.Width(cw).Render(s.result.Headline())
	score := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("答對 %d / %d 題", s.result.Correct, s.result.Total))

	lines := []string{score, s.result.Detail()}
	if !s.result.Perfect() {
		lines = append(lines, "")
		for _, q := range s.result.Incorrect {
			text, _ := q.Display()
			lines = append(lines,
				theme.Incorrect.Render(q.Word)+"  "+theme.Hint.Render(layout.Truncate(text, cw-lipgloss.Width(q.Word)-8)))
		}
	}
	card := components.ArcadeCard(strings.Join(lines, "\n"), cw)

	content := strings.Join([]string{headline, "", card, "", s.menu.View()}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
