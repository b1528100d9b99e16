// Package textview shows generated text (worksheets, learning material)
// in a scrollable pane with copy and save actions.
package textview

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// Status messages.
const (
	MsgCopied     = "已複製到剪貼簿"
	MsgCopyFailed = "複製失敗"
	MsgSaveFailed = "儲存失敗"
)

// TextViewScreen displays a block of text.
type TextViewScreen struct {
	deps     *screen.Deps
	title    string
	slug     string
	text     string
	viewport viewport.Model
	status   string
	failed   bool
	now      func() time.Time
}

var _ screen.Screen = (*TextViewScreen)(nil)
var _ screen.KeyHintProvider = (*TextViewScreen)(nil)

// New creates a text view. slug names saved files.
func New(deps *screen.Deps, title, slug, text string) *TextViewScreen {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.SetContent(text)
	return &TextViewScreen{
		deps:     deps,
		title:    title,
		slug:     slug,
		text:     text,
		viewport: vp,
		now:      time.Now,
	}
}

func (s *TextViewScreen) Init() tea.Cmd {
	return nil
}

func (s *TextViewScreen) Title() string {
	return s.title
}

func (s *TextViewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "捲動"},
		{Key: "c", Description: "複製"},
		{Key: "s", Description: "儲存"},
		{Key: "Esc", Description: "返回"},
	}
}

// Text returns the displayed text.
func (s *TextViewScreen) Text() string {
	return s.text
}

// Status returns the last action's message.
func (s *TextViewScreen) Status() string {
	return s.status
}

func (s *TextViewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "c":
			s.copy()
			return s, nil
		case "s":
			s.save()
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *TextViewScreen) copy() {
	if s.deps.Clipboard == nil {
		s.setStatus(MsgCopyFailed, true)
		return
	}
	if err := s.deps.Clipboard.WriteAll(s.text); err != nil {
		s.deps.Logger().WithError(err).Warn("clipboard write failed")
		s.setStatus(MsgCopyFailed, true)
		return
	}
	s.setStatus(MsgCopied, false)
}

func (s *TextViewScreen) save() {
	dir := s.deps.ExportDir()
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", s.slug, s.now().Format("20060102-150405")))
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		err = os.WriteFile(path, []byte(s.text), 0o644)
	}
	if err != nil {
		s.deps.Logger().WithError(err).WithField("path", path).Warn("save export failed")
		s.setStatus(MsgSaveFailed, true)
		return
	}
	s.setStatus("已儲存至 "+path, false)
}

func (s *TextViewScreen) setStatus(msg string, failed bool) {
	s.status = msg
	s.failed = failed
}

func (s *TextViewScreen) View(width, height int) string {
	statusLine := ""
	if s.status != "" {
		style := theme.Notice
		if s.failed {
			style = theme.ErrorText
		}
		statusLine = style.Render(s.status)
	}

	s.viewport.SetWidth(max(width-4, 10))
	s.viewport.SetHeight(max(height-3, 3))

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(s.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, body, statusLine)
}
