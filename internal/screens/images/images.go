// Package images manages the custom images and sentences attached to
// the words of an input.
package images

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/samber/lo"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/gallery"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// Status messages.
const (
	MsgNoImporter = "未設定 AI 服務，無法匯入圖片"
	MsgNoFiles    = "找不到圖片檔案"
	MsgEmpty      = "尚未匯入任何圖片，按 a 匯入"
	MsgImported   = "匯入完成"
	MsgDeleted    = "已刪除"
	MsgReadFailed = "無法讀取檔案："
)

type mode int

const (
	modeKeys mode = iota
	modeWords
	modePaths
	modeSentences
	modeImporting
)

type progressMsg struct {
	owner *ImagesScreen
	item  gallery.Item
}

type importDoneMsg struct {
	owner *ImagesScreen
	items []gallery.Item
	err   error
}

// ImagesScreen lists the vocabularies with overrides, or the words of
// one vocabulary, and imports new images.
type ImagesScreen struct {
	deps     *screen.Deps
	vocabKey string
	fixedKey bool
	mode     mode

	keys   []string
	words  []string
	cursor int

	paths     []string
	input     components.TextInput
	items     []gallery.Item
	status    string
	failed    bool
	cancel    context.CancelFunc
	ch        chan tea.Msg
	importing bool
}

var _ screen.Screen = (*ImagesScreen)(nil)
var _ screen.Closer = (*ImagesScreen)(nil)
var _ screen.KeyHintProvider = (*ImagesScreen)(nil)
var _ screen.EscapeHandler = (*ImagesScreen)(nil)

// New creates the image manager. An empty vocabKey starts at the list
// of vocabularies that have overrides.
func New(deps *screen.Deps, vocabKey string) *ImagesScreen {
	s := &ImagesScreen{deps: deps, vocabKey: vocabKey, fixedKey: vocabKey != ""}
	if vocabKey == "" {
		s.mode = modeKeys
		s.reloadKeys()
	} else {
		s.mode = modeWords
		s.reloadWords()
	}
	return s
}

func (s *ImagesScreen) reloadKeys() {
	s.keys = nil
	if s.deps.Overrides != nil {
		s.keys = s.deps.Overrides.VocabKeys()
		slices.Sort(s.keys)
	}
	s.cursor = min(s.cursor, max(len(s.keys)-1, 0))
}

func (s *ImagesScreen) reloadWords() {
	s.words = nil
	if s.deps.Overrides != nil {
		s.words = lo.Keys(s.deps.Overrides.ForVocab(s.vocabKey))
		slices.Sort(s.words)
	}
	s.cursor = min(s.cursor, max(len(s.words)-1, 0))
}

// Words returns the words with overrides in the open vocabulary.
func (s *ImagesScreen) Words() []string {
	return s.words
}

// Items returns the progress of the last import.
func (s *ImagesScreen) Items() []gallery.Item {
	return s.items
}

// Status returns the last status message.
func (s *ImagesScreen) Status() string {
	return s.status
}

func (s *ImagesScreen) Init() tea.Cmd {
	return nil
}

// Close cancels an import in flight.
func (s *ImagesScreen) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// WantsEscape reports whether Esc closes a prompt or returns to the
// vocabulary list rather than leaving the screen.
func (s *ImagesScreen) WantsEscape() bool {
	switch s.mode {
	case modePaths, modeSentences:
		return true
	case modeWords:
		return !s.fixedKey
	}
	return false
}

func (s *ImagesScreen) Title() string {
	return "圖片管理"
}

func (s *ImagesScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeKeys:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "選擇"},
			{Key: "Enter", Description: "開啟"},
			{Key: "x", Description: "全部刪除"},
			{Key: "Esc", Description: "返回"},
		}
	case modePaths, modeSentences:
		return []layout.KeyHint{
			{Key: "Enter", Description: "確認"},
			{Key: "Esc", Description: "取消"},
		}
	case modeImporting:
		return []layout.KeyHint{{Key: "Esc", Description: "返回"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "a", Description: "匯入"},
		{Key: "d", Description: "刪除"},
		{Key: "x", Description: "全部刪除"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *ImagesScreen) setStatus(msg string, failed bool) {
	s.status, s.failed = msg, failed
}

func (s *ImagesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.owner != s {
			return s, nil
		}
		if msg.item.Index >= 0 && msg.item.Index < len(s.items) {
			s.items[msg.item.Index] = msg.item
		}
		return s, s.wait()

	case importDoneMsg:
		if msg.owner != s {
			return s, nil
		}
		s.importing = false
		s.cancel = nil
		if msg.items != nil {
			s.items = msg.items
		}
		switch {
		case errors.Is(msg.err, context.Canceled):
		case msg.err != nil:
			s.deps.Logger().WithError(msg.err).Warn("image import failed")
			s.setStatus(analysis.MsgRequestFailed, true)
		default:
			done := lo.CountBy(s.items, func(it gallery.Item) bool { return it.Status == gallery.StatusDone })
			s.setStatus(fmt.Sprintf("%s：成功 %d / %d", MsgImported, done, len(s.items)), false)
		}
		s.reloadWords()
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.mode == modePaths || s.mode == modeSentences {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ImagesScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.mode {
	case modePaths, modeSentences:
		switch key {
		case "esc":
			s.mode = modeWords
			return s, nil
		case "enter":
			return s.submitInput()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case modeImporting:
		if key == "enter" && !s.importing {
			s.mode = modeWords
		}
		return s, nil

	case modeKeys:
		switch key {
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = min(s.cursor+1, max(len(s.keys)-1, 0))
		case "enter":
			if len(s.keys) > 0 {
				s.vocabKey = s.keys[s.cursor]
				s.mode = modeWords
				s.cursor = 0
				s.reloadWords()
			}
		case "x":
			if s.deps.Overrides != nil && len(s.keys) > 0 {
				if err := s.deps.Overrides.Clear(context.Background()); err != nil {
					s.setStatus(err.Error(), true)
					return s, nil
				}
				s.setStatus(MsgDeleted, false)
				s.reloadKeys()
			}
		}
		return s, nil
	}

	switch key {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, max(len(s.words)-1, 0))
	case "a":
		if s.deps.Importer == nil {
			s.setStatus(MsgNoImporter, true)
			return s, nil
		}
		s.mode = modePaths
		s.input = components.NewTextInput("圖片檔案或資料夾（以空白分隔）", "~/Pictures/詞彙", 0)
		return s, s.input.Init()
	case "d":
		if len(s.words) == 0 {
			return s, nil
		}
		word := s.words[s.cursor]
		if err := s.deps.Overrides.DeleteWord(context.Background(), s.vocabKey, word); err != nil {
			s.setStatus(err.Error(), true)
			return s, nil
		}
		s.setStatus(MsgDeleted+"："+word, false)
		s.reloadWords()
	case "x":
		if len(s.words) == 0 {
			return s, nil
		}
		if err := s.deps.Overrides.DeleteVocab(context.Background(), s.vocabKey); err != nil {
			s.setStatus(err.Error(), true)
			return s, nil
		}
		s.setStatus(MsgDeleted, false)
		s.reloadWords()
	case "esc":
		if !s.fixedKey {
			s.mode = modeKeys
			s.vocabKey = ""
			s.cursor = 0
			s.reloadKeys()
			return s, nil
		}
	}
	return s, nil
}

func (s *ImagesScreen) submitInput() (screen.Screen, tea.Cmd) {
	if s.mode == modePaths {
		paths, err := gallery.ExpandPaths(strings.Fields(s.input.Value()))
		if err != nil {
			s.setStatus(MsgReadFailed+err.Error(), true)
			return s, nil
		}
		if len(paths) == 0 {
			s.setStatus(MsgNoFiles, true)
			return s, nil
		}
		s.paths = paths
		s.mode = modeSentences
		s.input = components.NewTextInput("配對用的例句（可留空）", "媽媽每天都很忙碌。", 0)
		return s, s.input.Init()
	}
	return s, s.startImport(s.input.Value())
}

func (s *ImagesScreen) startImport(sentences string) tea.Cmd {
	files := make([]gallery.File, 0, len(s.paths))
	for _, p := range s.paths {
		f, err := gallery.LoadFile(p)
		if err != nil {
			s.deps.Logger().WithError(err).WithField("path", p).Warn("load image failed")
			s.setStatus(fmt.Sprintf("無法讀取 %s", p), true)
			s.mode = modeWords
			return nil
		}
		files = append(files, f)
	}

	s.items = lo.Map(files, func(f gallery.File, i int) gallery.Item {
		return gallery.Item{Index: i, Name: f.Name, Word: gallery.WordOf(f.Name)}
	})
	s.mode = modeImporting
	s.importing = true
	s.status = ""

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.ch = make(chan tea.Msg, 4*len(files)+1)

	importer, key := s.deps.Importer, s.vocabKey
	go func() {
		items, err := importer.Import(ctx, key, files, sentences, func(it gallery.Item) {
			select {
			case s.ch <- progressMsg{owner: s, item: it}:
			default:
			}
		})
		s.ch <- importDoneMsg{owner: s, items: items, err: err}
	}()
	return s.wait()
}

func (s *ImagesScreen) wait() tea.Cmd {
	ch := s.ch
	return func() tea.Msg { return <-ch }
}

func (s *ImagesScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	switch s.mode {
	case modeKeys:
		sections = append(sections, theme.Title.Render("已有自訂圖片的詞彙"), "")
		if len(s.keys) == 0 {
			sections = append(sections, theme.Hint.Render(analysis.MsgImagesNeedInput))
		}
		for i, k := range s.keys {
			label := layout.Truncate(strings.ReplaceAll(k, "\n", " "), cw-6)
			sections = append(sections, s.line(i, label))
		}

	case modeWords:
		sections = append(sections, theme.Title.Render(layout.Truncate(strings.ReplaceAll(s.vocabKey, "\n", " "), cw-4)), "")
		if len(s.words) == 0 {
			sections = append(sections, theme.Hint.Render(MsgEmpty))
		}
		content := vocab.WordContent(nil)
		if s.deps.Overrides != nil {
			content = s.deps.Overrides.ForVocab(s.vocabKey)
		}
		for i, w := range s.words {
			label := layout.Truncate(fmt.Sprintf("%s　%s", w, content[w].Sentence), cw-6)
			sections = append(sections, s.line(i, label))
		}

	case modePaths, modeSentences:
		sections = append(sections, s.input.View())
		if s.mode == modeSentences {
			sections = append(sections, "", theme.Hint.Render(fmt.Sprintf("共 %d 個檔案", len(s.paths))))
		}

	case modeImporting:
		finished := lo.CountBy(s.items, func(it gallery.Item) bool {
			return it.Status == gallery.StatusDone || it.Status == gallery.StatusError
		})
		pct := 0.0
		if len(s.items) > 0 {
			pct = float64(finished) / float64(len(s.items))
		}
		sections = append(sections, components.NewProgressBar("匯入中", pct, true, cw).View(), "")
		for _, it := range s.items {
			style := theme.Body
			switch it.Status {
			case gallery.StatusDone:
				style = theme.Correct
			case gallery.StatusError:
				style = theme.Incorrect
			}
			sections = append(sections, style.Render(layout.Truncate(fmt.Sprintf("%s  %s", it.Name, it.Message), cw)))
		}
		if !s.importing {
			sections = append(sections, "", theme.Hint.Render("按 Enter 繼續"))
		}
	}

	if s.status != "" {
		style := theme.Notice
		if s.failed {
			style = theme.ErrorText
		}
		sections = append(sections, "", style.Render(s.status))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ImagesScreen) line(i int, label string) string {
	if i == s.cursor {
		return theme.Selected.Render("▸ " + label)
	}
	return theme.Unselected.Render("  " + label)
}
