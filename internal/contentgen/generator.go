// Package contentgen builds the prompts for every AI call the app makes
// and shapes the responses into vocabulary records.
package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/vocab"
)

// Purpose labels recorded in the AI request log.
const (
	PurposeParse         = "parse-structured"
	PurposeExtract       = "extract-words"
	PurposeCards         = "learning-cards"
	PurposeQuizDef       = "quiz-definition"
	PurposeQuizSentence  = "quiz-sentence"
	PurposeQuizConcept   = "quiz-concept"
	PurposeMatch         = "match-sentences"
	PurposeImageSentence = "image-sentence"
	PurposeIllustration  = "illustration"
	PurposeVoiceChars    = "voice-chars"
	PurposeVoiceWords    = "voice-words"
	PurposeVoiceWords2   = "voice-words-2"
)

// ErrNoImageGenerator is returned by Illustrate when no image backend is
// configured.
var ErrNoImageGenerator = errors.New("illustrations are not available for this provider")

// Generator issues the AI calls.
type Generator struct {
	provider llm.Provider
	images   llm.ImageGenerator
	config   Config
}

// New creates a Generator. images may be nil.
func New(provider llm.Provider, images llm.ImageGenerator, cfg Config) *Generator {
	return &Generator{provider: provider, images: images, config: cfg}
}

// CanIllustrate reports whether an image backend is configured.
func (g *Generator) CanIllustrate() bool {
	return g.images != nil
}

type cardsOutput struct {
	Cards []vocab.LearningCard `json:"cards"`
}

type wordsOutput struct {
	Words []string `json:"words"`
}

type questionOutput struct {
	Word       string   `json:"word"`
	Definition string   `json:"definition"`
	Sentence   string   `json:"sentence"`
	Scenario   string   `json:"scenario"`
	Options    []string `json:"options"`
}

type questionsOutput struct {
	Questions []questionOutput `json:"questions"`
}

type matchesOutput struct {
	Matches []struct {
		Word     string `json:"word"`
		Sentence string `json:"sentence"`
	} `json:"matches"`
}

func (g *Generator) generate(ctx context.Context, purpose, prompt string, schema *llm.Schema, images ...llm.Image) (*llm.Response, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages:    llm.UserMessage(prompt, images...),
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", purpose, err)
	}
	return resp, nil
}

func (g *Generator) generateJSON(ctx context.Context, purpose, prompt string, schema *llm.Schema, out any) error {
	resp, err := g.generate(ctx, purpose, prompt, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("%s: %w", purpose, &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	return nil
}

// ParseStructured reads a structured vocabulary list (words with
// definitions and sentences) into cards. It returns nil cards when the
// text has no structured entries.
func (g *Generator) ParseStructured(ctx context.Context, text string) ([]vocab.LearningCard, error) {
	prompt, err := render("parse", textData{Text: text})
	if err != nil {
		return nil, err
	}
	var out cardsOutput
	if err := g.generateJSON(ctx, PurposeParse, prompt, StructuredCardsSchema, &out); err != nil {
		return nil, err
	}
	cards := cleanCards(out.Cards)
	if len(cards) == 0 {
		return nil, nil
	}
	return cards, nil
}

// ExtractWords pulls study-worthy words out of free text.
func (g *Generator) ExtractWords(ctx context.Context, text string) ([]string, error) {
	prompt, err := render("extract", textData{Text: text})
	if err != nil {
		return nil, err
	}
	var out wordsOutput
	if err := g.generateJSON(ctx, PurposeExtract, prompt, WordsSchema, &out); err != nil {
		return nil, err
	}
	words := lo.Uniq(lo.FilterMap(out.Words, func(w string, _ int) (string, bool) {
		w = strings.TrimSpace(w)
		return w, w != ""
	}))
	return words, nil
}

// LearningCards generates one card per word. preexisting maps a word to a
// sentence the card must open with.
func (g *Generator) LearningCards(ctx context.Context, words []string, preexisting map[string]string) ([]vocab.LearningCard, error) {
	vocabulary, err := buildVocabulary(words, preexisting)
	if err != nil {
		return nil, err
	}
	prompt, err := render("cards", cardsData{Vocabulary: vocabulary})
	if err != nil {
		return nil, err
	}
	var out cardsOutput
	if err := g.generateJSON(ctx, PurposeCards, prompt, LearningCardsSchema, &out); err != nil {
		return nil, err
	}
	return cleanCards(out.Cards), nil
}

// Quiz generates raw questions of one kind for words, grounding them in
// cards when available. Options are returned as the model wrote them.
func (g *Generator) Quiz(ctx context.Context, kind vocab.QuizKind, words []string, cards []vocab.LearningCard) ([]vocab.Question, error) {
	learning, err := buildLearningData(cards)
	if err != nil {
		return nil, err
	}
	data := quizData{Words: strings.Join(words, "、"), LearningData: learning}

	var purpose string
	var schema *llm.Schema
	switch kind {
	case vocab.KindDefinition:
		purpose, schema = PurposeQuizDef, DefinitionQuizSchema
	case vocab.KindSentence:
		purpose, schema = PurposeQuizSentence, SentenceQuizSchema
	case vocab.KindConcept:
		purpose, schema = PurposeQuizConcept, ConceptQuizSchema
	default:
		return nil, fmt.Errorf("unknown quiz kind %v", kind)
	}

	prompt, err := render(purpose, data)
	if err != nil {
		return nil, err
	}
	var out questionsOutput
	if err := g.generateJSON(ctx, purpose, prompt, schema, &out); err != nil {
		return nil, err
	}

	return lo.Map(out.Questions, func(q questionOutput, _ int) vocab.Question {
		return q.toQuestion(kind)
	}), nil
}

func (q questionOutput) toQuestion(kind vocab.QuizKind) vocab.Question {
	prompt := q.Definition
	switch kind {
	case vocab.KindSentence:
		prompt = q.Sentence
	case vocab.KindConcept:
		prompt = q.Scenario
	}
	return vocab.Question{Kind: kind, Word: q.Word, Prompt: prompt, Options: q.Options}
}

// MatchSentences pairs words with the sentence in text that uses them.
// Words the model did not match, or that are not in words, are absent.
func (g *Generator) MatchSentences(ctx context.Context, words []string, text string) (map[string]string, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]string{}, nil
	}
	prompt, err := render("match", matchData{Words: strings.Join(words, ", "), Text: text})
	if err != nil {
		return nil, err
	}
	var out matchesOutput
	if err := g.generateJSON(ctx, PurposeMatch, prompt, MatchesSchema, &out); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(out.Matches))
	for _, m := range out.Matches {
		if lo.Contains(words, m.Word) {
			result[m.Word] = strings.TrimSpace(m.Sentence)
		}
	}
	return result, nil
}

// SentenceForImage writes an example sentence for word describing img.
func (g *Generator) SentenceForImage(ctx context.Context, word string, img llm.Image) (string, error) {
	prompt, err := render("image-sentence", wordData{Word: word})
	if err != nil {
		return "", err
	}
	resp, err := g.generate(ctx, PurposeImageSentence, prompt, nil, img)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Illustrate draws a child-friendly illustration of subject.
func (g *Generator) Illustrate(ctx context.Context, subject string, style vocab.ImageStyle) (llm.Image, error) {
	if g.images == nil {
		return llm.Image{}, ErrNoImageGenerator
	}
	ctx = llm.WithPurpose(ctx, PurposeIllustration)
	resp, err := g.images.GenerateImage(ctx, llm.ImageRequest{
		Prompt:      IllustrationPrompt(subject, style),
		AspectRatio: g.config.ImageAspectRatio,
		MIMEType:    g.config.ImageMIMEType,
	})
	if err != nil {
		return llm.Image{}, fmt.Errorf("%s: %w", PurposeIllustration, err)
	}
	return resp.Image, nil
}

// cleanCards trims fields, drops cards without a word and caps sentences.
func cleanCards(cards []vocab.LearningCard) []vocab.LearningCard {
	return lo.FilterMap(cards, func(c vocab.LearningCard, _ int) (vocab.LearningCard, bool) {
		c.Word = strings.TrimSpace(c.Word)
		c.Definition = strings.TrimSpace(c.Definition)
		c.Sentences = lo.FilterMap(c.Sentences, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
		if len(c.Sentences) > vocab.SentencesPerCard {
			c.Sentences = c.Sentences[:vocab.SentencesPerCard]
		}
		return c, c.Word != ""
	})
}
