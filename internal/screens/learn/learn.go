// Package learn pages through the learning cards of an analysis.
package learn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/illustrate"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

type illustrationMsg struct {
	owner *LearnScreen
	gen   int
	word  string
	res   illustrate.Result
	err   error
}

// LearnScreen shows one card at a time with its illustration.
type LearnScreen struct {
	deps    *screen.Deps
	cards   []vocab.LearningCard
	content vocab.WordContent
	cache   *illustrate.Cache
	index   int
	images  map[string]components.Illustration

	gen     int
	pending string
	cancel  context.CancelFunc
}

var _ screen.Screen = (*LearnScreen)(nil)
var _ screen.Closer = (*LearnScreen)(nil)
var _ screen.KeyHintProvider = (*LearnScreen)(nil)

// New creates the card pager. cache may be nil to skip illustrations.
func New(deps *screen.Deps, a *vocab.Analysis, cache *illustrate.Cache) *LearnScreen {
	var content vocab.WordContent
	if deps.Overrides != nil {
		content = deps.Overrides.ForVocab(a.VocabKey)
	}
	return &LearnScreen{
		deps:    deps,
		cards:   a.Cards,
		content: content,
		cache:   cache,
		images:  make(map[string]components.Illustration),
	}
}

func (s *LearnScreen) Init() tea.Cmd {
	return s.illustrate()
}

// Close cancels the illustration request in flight and forgets that its
// card was loading.
func (s *LearnScreen) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.pending != "" {
		if s.images[s.pending].Loading {
			delete(s.images, s.pending)
		}
		s.pending = ""
	}
}

func (s *LearnScreen) Title() string {
	return "學習卡片"
}

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "翻頁"},
		{Key: "r", Description: "朗讀"},
		{Key: "i", Description: "插圖"},
		{Key: "Esc", Description: "返回"},
	}
}

// Index returns the current card position.
func (s *LearnScreen) Index() int {
	return s.index
}

func (s *LearnScreen) current() (vocab.LearningCard, bool) {
	if s.index < 0 || s.index >= len(s.cards) {
		return vocab.LearningCard{}, false
	}
	return s.cards[s.index], true
}

// illustrate starts the fetch for the current card, cancelling the one
// for the previous page.
func (s *LearnScreen) illustrate() tea.Cmd {
	s.Close()
	card, ok := s.current()
	if !ok || s.cache == nil {
		return nil
	}
	if s.images[card.Word].Settled() {
		return nil
	}
	if r, ok := s.cache.Cached(card.Word, s.deps.Style); ok {
		s.images[card.Word] = components.Illustration{Path: r.Path, Custom: r.Override}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	s.cancel = cancel
	s.pending = card.Word
	s.images[card.Word] = components.Illustration{Loading: true}

	cache, content, style, gen := s.cache, s.content, s.deps.Style, s.gen
	return func() tea.Msg {
		res, err := cache.Fetch(ctx, card, content, style)
		return illustrationMsg{owner: s, gen: gen, word: card.Word, res: res, err: err}
	}
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case illustrationMsg:
		if msg.owner != s || msg.gen != s.gen {
			return s, nil
		}
		s.pending = ""
		switch {
		case errors.Is(msg.err, context.Canceled):
			delete(s.images, msg.word)
		case msg.err != nil:
			s.images[msg.word] = components.Illustration{Failed: true}
		default:
			s.images[msg.word] = components.Illustration{Path: msg.res.Path, Custom: msg.res.Override}
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "right", "l", "space", "pgdown":
			if s.index < len(s.cards)-1 {
				s.index++
				return s, s.illustrate()
			}
		case "left", "h", "pgup":
			if s.index > 0 {
				s.index--
				return s, s.illustrate()
			}
		case "r":
			if card, ok := s.current(); ok {
				s.deps.Speak(card.Word + "。" + card.Definition)
			}
		case "i":
			if card, ok := s.current(); ok && !s.images[card.Word].Loading && !s.images[card.Word].Settled() {
				delete(s.images, card.Word)
				return s, s.illustrate()
			}
		}
	}
	return s, nil
}

func (s *LearnScreen) View(width, height int) string {
	card, ok := s.current()
	if !ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Hint.Render("沒有學習卡片"))
	}
	cw := min(width-4, 76)

	header := theme.Title.Render(fmt.Sprintf("詞彙 %d/%d: %s", s.index+1, len(s.cards), card.Word))

	var b strings.Builder
	b.WriteString(theme.Label.Render("【個別字義】") + "\n")
	for _, cd := range card.CharDefinitions {
		fmt.Fprintf(&b, "%s：%s\n", cd.Char, cd.Definition)
	}
	b.WriteString("\n" + theme.Label.Render("【語詞意思】") + "\n")
	b.WriteString(card.Definition + "\n")
	b.WriteString("\n" + theme.Label.Render("【例句】") + "\n")
	for i, sentence := range card.Sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sentence)
	}
	if line := s.imageLine(card.Word); line != "" {
		b.WriteString("\n" + line)
	}

	body := lipgloss.NewStyle().Width(cw - 6).Render(strings.TrimRight(b.String(), "\n"))
	content := lipgloss.JoinVertical(lipgloss.Center, header, "", components.ArcadeCard(body, cw))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *LearnScreen) imageLine(word string) string {
	return components.IllustrationLine(s.images[word], s.cache != nil)
}
