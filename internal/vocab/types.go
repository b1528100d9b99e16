// Package vocab defines the vocabulary records shared by every stage of the
// pipeline: learning cards, quiz questions, overrides and history entries.
package vocab

import (
	"fmt"
	"strings"
)

// CharDefinition explains one character or morpheme of a word.
type CharDefinition struct {
	Char       string `json:"char"`
	Definition string `json:"definition"`
}

// LearningCard is the per-word study unit.
type LearningCard struct {
	Word            string           `json:"word"`
	CharDefinitions []CharDefinition `json:"charDefinitions"`
	Definition      string           `json:"definition"`
	Sentences       []string         `json:"sentences"`
}

// SentencesPerCard is the number of example sentences a card carries.
const SentencesPerCard = 3

// OptionsPerQuestion is the number of choices every quiz question offers.
const OptionsPerQuestion = 4

// ClozeMarker stands in for the target word inside a sentence question.
const ClozeMarker = "____"

// QuizKind discriminates the three quiz variants.
type QuizKind int

const (
	KindDefinition QuizKind = iota // 語詞解釋配對選擇
	KindSentence                   // 語詞例句漏空選擇
	KindConcept                    // 語詞概念匹配測驗
)

// AllKinds lists the quiz kinds in worksheet order.
var AllKinds = []QuizKind{KindDefinition, KindSentence, KindConcept}

func (k QuizKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindSentence:
		return "sentence"
	case KindConcept:
		return "concept"
	default:
		return fmt.Sprintf("QuizKind(%d)", int(k))
	}
}

// Title returns the display title used on screens and worksheets.
func (k QuizKind) Title() string {
	switch k {
	case KindDefinition:
		return "測驗一: 語詞解釋配對選擇"
	case KindSentence:
		return "測驗二: 語詞例句漏空選擇"
	case KindConcept:
		return "測驗三: 語詞概念匹配測驗"
	default:
		return k.String()
	}
}

// ParseQuizKind accepts the kind name or its common short form.
func ParseQuizKind(s string) (QuizKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "definition", "def", "1":
		return KindDefinition, nil
	case "sentence", "sen", "2":
		return KindSentence, nil
	case "concept", "con", "scenario", "3":
		return KindConcept, nil
	}
	return 0, fmt.Errorf("unknown quiz kind %q", s)
}

// Question is a multiple-choice question. Prompt holds the definition,
// the cloze sentence or the scenario depending on Kind.
type Question struct {
	Kind    QuizKind `json:"kind"`
	Word    string   `json:"word"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Clone returns a deep copy so option shuffles never alias.
func (q Question) Clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// IsCorrect reports whether option answers the question.
func (q Question) IsCorrect(option string) bool {
	return option == q.Word
}

// QuizSet groups the three quiz arrays produced by one analysis.
type QuizSet struct {
	Definition []Question `json:"definition"`
	Sentence   []Question `json:"sentence"`
	Concept    []Question `json:"concept"`
}

// Get returns the questions for kind.
func (s QuizSet) Get(kind QuizKind) []Question {
	switch kind {
	case KindDefinition:
		return s.Definition
	case KindSentence:
		return s.Sentence
	case KindConcept:
		return s.Concept
	}
	return nil
}

// Set replaces the questions for kind.
func (s *QuizSet) Set(kind QuizKind, qs []Question) {
	switch kind {
	case KindDefinition:
		s.Definition = qs
	case KindSentence:
		s.Sentence = qs
	case KindConcept:
		s.Concept = qs
	}
}

// Empty reports whether no kind has any question.
func (s QuizSet) Empty() bool {
	return len(s.Definition) == 0 && len(s.Sentence) == 0 && len(s.Concept) == 0
}

// Count returns the total number of questions across kinds.
func (s QuizSet) Count() int {
	return len(s.Definition) + len(s.Sentence) + len(s.Concept)
}

// CustomContent is a locally supplied image and sentence for one word.
type CustomContent struct {
	ImageURL string `json:"imageUrl"`
	Sentence string `json:"sentence"`
}

// WordContent maps a word to its override.
type WordContent map[string]CustomContent

// HistoryItem is one remembered input.
type HistoryItem struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// VocabKey returns the namespace key for a raw input.
func VocabKey(input string) string {
	return strings.TrimSpace(input)
}

// ImageStyle is an illustration style offered to the image model.
type ImageStyle string

const (
	StylePictureBook ImageStyle = "一般繪本風格"
	StyleGhibli      ImageStyle = "吉卜力風格"
	StyleColoring    ImageStyle = "著色風格"
	StyleRealistic   ImageStyle = "真實圖片風格"
	StylePixelArt    ImageStyle = "像素藝術風格"
	StyleWatercolor  ImageStyle = "水彩畫風格"
)

// ImageStyles lists the selectable styles, default first.
var ImageStyles = []ImageStyle{
	StylePictureBook,
	StyleGhibli,
	StyleColoring,
	StyleRealistic,
	StylePixelArt,
	StyleWatercolor,
}

// ParseImageStyle returns the matching style or the default.
func ParseImageStyle(s string) ImageStyle {
	for _, st := range ImageStyles {
		if string(st) == s {
			return st
		}
	}
	return StylePictureBook
}

// Display splits the prompt into the question text and the optional
// parenthesized hint that follows it.
func (q Question) Display() (text, hint string) {
	if q.Kind == KindDefinition {
		return q.Prompt, ""
	}
	text = q.Prompt
	if i := strings.Index(q.Prompt, "("); i >= 0 {
		text = q.Prompt[:i]
		rest := q.Prompt[i+1:]
		if j := strings.Index(rest, ")"); j > 0 {
			hint = rest[:j]
		}
	}
	return strings.TrimSpace(text), hint
}

// ImagePrompt returns the illustration subject for the question.
func (q Question) ImagePrompt() string {
	switch q.Kind {
	case KindSentence:
		return strings.Replace(q.Prompt, ClozeMarker, q.Word, 1)
	case KindConcept:
		text, _ := q.Display()
		return q.Word + " - " + text
	default:
		return q.Word
	}
}

// Analysis is the outcome of analyzing one input.
type Analysis struct {
	ID       string         `json:"id"`
	VocabKey string         `json:"vocabKey"`
	Words    []string       `json:"words"`
	Cards    []LearningCard `json:"cards"`
	Quizzes  QuizSet        `json:"quizzes"`

	// Notice is an informational message: the cards are usable but some
	// quiz features are not.
	Notice string `json:"notice,omitempty"`
}

// CanQuiz reports whether any quiz has questions.
func (a *Analysis) CanQuiz() bool {
	return a != nil && !a.Quizzes.Empty()
}

// Card returns the learning card for word.
func (a *Analysis) Card(word string) (LearningCard, bool) {
	if a == nil {
		return LearningCard{}, false
	}
	for _, c := range a.Cards {
		if c.Word == word {
			return c, true
		}
	}
	return LearningCard{}, false
}
