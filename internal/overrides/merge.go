package overrides

import (
	"strings"

	"github.com/abhisek/cihui/internal/vocab"
	"github.com/samber/lo"
)

// MergeCard puts the word's override sentence first in the card's
// sentences, drops other copies of it and keeps at most three.
func MergeCard(card vocab.LearningCard, content vocab.WordContent) vocab.LearningCard {
	c, ok := content[card.Word]
	if !ok || strings.TrimSpace(c.Sentence) == "" {
		return card
	}
	others := lo.Filter(card.Sentences, func(s string, _ int) bool { return s != c.Sentence })
	sentences := append([]string{c.Sentence}, others...)
	if len(sentences) > vocab.SentencesPerCard {
		sentences = sentences[:vocab.SentencesPerCard]
	}
	card.Sentences = sentences
	return card
}

// MergeCards applies MergeCard to every card.
func MergeCards(cards []vocab.LearningCard, content vocab.WordContent) []vocab.LearningCard {
	return lo.Map(cards, func(c vocab.LearningCard, _ int) vocab.LearningCard {
		return MergeCard(c, content)
	})
}

// SpliceSentenceQuestion rewrites a sentence question's prompt from the
// word's override: the word becomes the cloze marker and the card's
// definition follows as a parenthesized hint. An override sentence that
// does not contain the word leaves the generated prompt in place, so the
// question never loses its blank. Word and options are never touched.
func SpliceSentenceQuestion(q vocab.Question, content vocab.WordContent, cards []vocab.LearningCard) (vocab.Question, bool) {
	if q.Kind != vocab.KindSentence {
		return q, false
	}
	c, ok := content[q.Word]
	if !ok || q.Word == "" || !strings.Contains(c.Sentence, q.Word) {
		return q, false
	}
	hint := ""
	if card, found := lo.Find(cards, func(card vocab.LearningCard) bool { return card.Word == q.Word }); found {
		hint = "(" + card.Definition + ")"
	}
	q.Prompt = strings.TrimSpace(strings.Replace(c.Sentence, q.Word, vocab.ClozeMarker, 1) + " " + hint)
	return q, true
}

// SpliceSentenceQuestions applies SpliceSentenceQuestion to every question.
func SpliceSentenceQuestions(qs []vocab.Question, content vocab.WordContent, cards []vocab.LearningCard) []vocab.Question {
	return lo.Map(qs, func(q vocab.Question, _ int) vocab.Question {
		out, _ := SpliceSentenceQuestion(q, content, cards)
		return out
	})
}

// ImageFor returns the override image for word, if any.
func ImageFor(word string, content vocab.WordContent) (string, bool) {
	c, ok := content[word]
	if !ok || c.ImageURL == "" {
		return "", false
	}
	return c.ImageURL, true
}

// IllustrationSubject picks what a card's illustration should depict:
// the override sentence, else the first example sentence, else the word.
func IllustrationSubject(card vocab.LearningCard, content vocab.WordContent) string {
	if c, ok := content[card.Word]; ok && strings.TrimSpace(c.Sentence) != "" {
		return c.Sentence
	}
	if len(card.Sentences) > 0 && strings.TrimSpace(card.Sentences[0]) != "" {
		return card.Sentences[0]
	}
	return card.Word
}

// PreexistingSentences lists override sentences for the given words, for
// seeding card generation.
func PreexistingSentences(words []string, content vocab.WordContent) map[string]string {
	out := make(map[string]string)
	for _, w := range words {
		if c, ok := content[w]; ok && strings.TrimSpace(c.Sentence) != "" {
			out[w] = c.Sentence
		}
	}
	return out
}
