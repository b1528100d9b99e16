// Package input collects the text, word list or URL to analyze.
package input

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/overview"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

const placeholder = "貼上課文、詞彙清單或網址..."

// InputScreen is a multi-line editor that starts an analysis.
type InputScreen struct {
	deps    *screen.Deps
	area    textarea.Model
	errText string
}

var _ screen.Screen = (*InputScreen)(nil)
var _ screen.KeyHintProvider = (*InputScreen)(nil)

// New creates the input screen prefilled with content.
func New(deps *screen.Deps, content string) *InputScreen {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(10)
	ta.SetValue(content)
	return &InputScreen{deps: deps, area: ta}
}

// Value returns the current text.
func (s *InputScreen) Value() string {
	return s.area.Value()
}

// Err returns the validation message, if any.
func (s *InputScreen) Err() string {
	return s.errText
}

func (s *InputScreen) Init() tea.Cmd {
	return s.area.Focus()
}

func (s *InputScreen) Title() string {
	return "新的解析"
}

func (s *InputScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "開始解析"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *InputScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if kmsg.String() == "ctrl+s" {
			return s, s.submit()
		}
		s.errText = ""
	}
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	return s, cmd
}

func (s *InputScreen) submit() tea.Cmd {
	text := strings.TrimSpace(s.area.Value())
	if text == "" {
		s.errText = analysis.MsgEmptyInput
		return nil
	}
	if s.deps.Analyzer == nil {
		s.errText = analysis.MsgRequestFailed
		return nil
	}
	return router.Push(overview.Analyze(s.deps, text))
}

func (s *InputScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	s.area.SetWidth(cw)
	s.area.SetHeight(max(min(height-8, 16), 3))

	sections := []string{
		theme.Title.Render("請輸入要學習的內容"),
		theme.Hint.Render("可以是課文、以頓號分隔的詞彙，或是一個網址"),
		"",
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Render(s.area.View()),
	}
	if s.errText != "" {
		sections = append(sections, "", theme.ErrorText.Render(s.errText))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
