package contentgen

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/cihui/internal/vocab"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type textData struct {
	Text string
}

type quizData struct {
	Words        string
	LearningData string
}

type cardsData struct {
	Vocabulary string
}

type matchData struct {
	Words string
	Text  string
}

type wordData struct {
	Word string
}

type illustrationData struct {
	Subject string
	Style   vocab.ImageStyle
}

type voiceData struct {
	Chars string
	Words string
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return b.String(), nil
}

// cardVocabulary is the per-word entry of the learning card prompt.
type cardVocabulary struct {
	Word     string `json:"word"`
	Sentence string `json:"pre-existing_sentence,omitempty"`
}

func buildVocabulary(words []string, preexisting map[string]string) (string, error) {
	entries := make([]cardVocabulary, len(words))
	for i, w := range words {
		entries[i] = cardVocabulary{Word: w, Sentence: preexisting[w]}
	}
	return marshalPrompt(entries, true)
}

func buildLearningData(cards []vocab.LearningCard) (string, error) {
	if len(cards) == 0 {
		return "", nil
	}
	return marshalPrompt(cards, false)
}

func marshalPrompt(v any, indent bool) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// IllustrationPrompt is the image model prompt for a subject and style.
func IllustrationPrompt(subject string, style vocab.ImageStyle) string {
	p, err := render("illustration", illustrationData{Subject: subject, Style: style})
	if err != nil {
		// The template is static; a failure here is a programming error.
		panic(err)
	}
	return p
}
