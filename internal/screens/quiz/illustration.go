package quiz

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/illustrate"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/vocab"
)

// Illustrations supplies the picture shown beside each question. A nil
// *Illustrations, or one without a cache, shows no pictures.
type Illustrations struct {
	cache   *illustrate.Cache
	style   vocab.ImageStyle
	content vocab.WordContent
	cards   map[string]vocab.LearningCard
}

// NewIllustrations draws questions over a from cache, preferring the
// vocabulary's custom images. cache may be nil.
func NewIllustrations(deps *screen.Deps, a *vocab.Analysis, cache *illustrate.Cache) *Illustrations {
	il := &Illustrations{cache: cache, style: deps.Style, cards: make(map[string]vocab.LearningCard, len(a.Cards))}
	if deps.Overrides != nil {
		il.content = deps.Overrides.ForVocab(a.VocabKey)
	}
	for _, c := range a.Cards {
		il.cards[c.Word] = c
	}
	return il
}

func (il *Illustrations) available() bool {
	return il != nil && il.cache != nil
}

func (il *Illustrations) card(word string) vocab.LearningCard {
	if c, ok := il.cards[word]; ok {
		return c
	}
	return vocab.LearningCard{Word: word}
}

type illustrationMsg struct {
	owner *QuizScreen
	gen   int
	res   illustrate.Result
	err   error
}

// illustrate starts the fetch for the current question's word and
// cancels the previous question's.
func (s *QuizScreen) illustrate() tea.Cmd {
	s.stopIllustration()
	s.image = components.Illustration{}
	q, ok := s.session.Current()
	if !ok || !s.art.available() {
		return nil
	}
	if r, ok := s.art.cache.Cached(q.Word, s.art.style); ok {
		s.image = components.Illustration{Path: r.Path, Custom: r.Override}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	s.cancel = cancel
	s.image = components.Illustration{Loading: true}

	art, card, gen := s.art, s.art.card(q.Word), s.gen
	return func() tea.Msg {
		res, err := art.cache.Fetch(ctx, card, art.content, art.style)
		return illustrationMsg{owner: s, gen: gen, res: res, err: err}
	}
}

func (s *QuizScreen) stopIllustration() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *QuizScreen) illustrated(msg illustrationMsg) {
	if msg.owner != s || msg.gen != s.gen {
		return
	}
	switch {
	case errors.Is(msg.err, context.Canceled):
		s.image = components.Illustration{}
	case msg.err != nil:
		s.image = components.Illustration{Failed: true}
	default:
		s.image = components.Illustration{Path: msg.res.Path, Custom: msg.res.Override}
	}
}
