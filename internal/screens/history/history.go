package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/input"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// Status messages.
const (
	MsgEmpty        = "目前沒有歷史紀錄"
	MsgConfirmClear = "再按一次 x 確認清除全部紀錄"
	MsgCleared      = "已清除全部紀錄"
	MsgDeleted      = "已刪除"
	MsgRenamed      = "已重新命名"
)

type historyLoadedMsg struct {
	Items []vocab.HistoryItem
}

// HistoryScreen lists past inputs.
type HistoryScreen struct {
	deps     *screen.Deps
	items    []vocab.HistoryItem
	selected int
	expanded map[int]bool
	loaded   bool

	renaming     bool
	rename       components.TextInput
	confirmClear bool
	status       string
	errMsg       string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeHandler = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps *screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	store := s.deps.History
	return func() tea.Msg {
		return historyLoadedMsg{Items: store.Items()}
	}
}

// Items returns the displayed list.
func (s *HistoryScreen) Items() []vocab.HistoryItem {
	return s.items
}

// Status returns the last status message.
func (s *HistoryScreen) Status() string {
	return s.status
}

// WantsEscape reports whether Esc cancels the rename prompt.
func (s *HistoryScreen) WantsEscape() bool {
	return s.renaming
}

func (s *HistoryScreen) Title() string {
	return "歷史紀錄"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.renaming {
		return []layout.KeyHint{
			{Key: "Enter", Description: "確認"},
			{Key: "Esc", Description: "取消"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "載入"},
		{Key: "Space", Description: "預覽"},
		{Key: "n", Description: "重新命名"},
		{Key: "d", Description: "刪除"},
		{Key: "x", Description: "全部清除"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *HistoryScreen) reload() {
	s.items = s.deps.History.Items()
	s.selected = min(s.selected, max(len(s.items)-1, 0))
	s.expanded = make(map[int]bool)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.items = msg.Items
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		if s.renaming {
			return s.updateRename(msg)
		}
		return s.handleKey(msg)
	}

	if s.renaming {
		var cmd tea.Cmd
		s.rename, cmd = s.rename.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key != "x" {
		s.confirmClear = false
	}
	s.errMsg = ""

	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.items)-1 {
			s.selected++
		}
	case "space":
		s.expanded[s.selected] = !s.expanded[s.selected]
	case "enter":
		if len(s.items) > 0 {
			return s, router.Replace(input.New(s.deps, s.items[s.selected].Content))
		}
	case "n":
		if len(s.items) > 0 {
			s.renaming = true
			s.rename = components.NewTextInput("新名稱", displayName(s.items[s.selected]), 60)
			s.rename.SetValue(s.items[s.selected].Name)
			return s, s.rename.Init()
		}
	case "d":
		if len(s.items) == 0 {
			return s, nil
		}
		if _, err := s.deps.History.Delete(context.Background(), s.selected); err != nil {
			s.fail(err)
			return s, nil
		}
		s.status = MsgDeleted
		s.reload()
	case "x":
		if len(s.items) == 0 {
			return s, nil
		}
		if !s.confirmClear {
			s.confirmClear = true
			s.status = MsgConfirmClear
			return s, nil
		}
		s.confirmClear = false
		if err := s.deps.History.Clear(context.Background()); err != nil {
			s.fail(err)
			return s, nil
		}
		s.status = MsgCleared
		s.reload()
	}
	return s, nil
}

func (s *HistoryScreen) updateRename(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.renaming = false
		return s, nil
	case "enter":
		s.renaming = false
		if err := s.deps.History.Rename(context.Background(), s.selected, s.rename.Value()); err != nil {
			s.fail(err)
			return s, nil
		}
		s.status = MsgRenamed
		s.reload()
		return s, nil
	}
	var cmd tea.Cmd
	s.rename, cmd = s.rename.Update(msg)
	return s, cmd
}

func (s *HistoryScreen) fail(err error) {
	s.deps.Logger().WithError(err).Warn("history update failed")
	s.errMsg = err.Error()
	s.status = ""
}

// displayName flattens an item's name onto one line.
func displayName(it vocab.HistoryItem) string {
	return strings.ReplaceAll(it.Name, "\n", " ")
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  讀取中...")
	}
	if len(s.items) == 0 {
		msg := MsgEmpty
		if s.status != "" {
			msg = s.status + "\n\n" + MsgEmpty
		}
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n" + msg)
	}

	cw := min(width-4, 76)
	var b strings.Builder
	b.WriteString("\n")

	for i, it := range s.items {
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := layout.Truncate(fmt.Sprintf("%s%d. %s", prefix, i+1, displayName(it)), cw)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(style.Render(line))))
		b.WriteString("\n")

		if s.expanded[i] {
			preview := lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Width(cw - 4).
				PaddingLeft(4).
				Render(it.Content)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, preview))
			b.WriteString("\n")
		}
	}

	if s.renaming {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.rename.View()))
		b.WriteString("\n")
	}
	switch {
	case s.errMsg != "":
		b.WriteString("\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.ErrorText.Render(s.errMsg)))
	case s.status != "":
		b.WriteString("\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Notice.Render(s.status)))
	}

	return b.String()
}
