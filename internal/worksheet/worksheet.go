// Package worksheet renders quiz sets and learning cards as printable text.
package worksheet

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
)

// NoQuestionsText is returned when no kind has any question.
const NoQuestionsText = "沒有可用的測驗題目可供輸出。"

const (
	rule      = "===================="
	optionSep = "   "
)

// Header is the worksheet title block.
const Header = "中文詞彙作業單\n\n" +
	"姓名：____________________\n" +
	"日期：______ 年 ______ 月 ______ 日\n\n"

// Render serializes the requested kinds of set, in fixed kind order, with
// each section's questions reshuffled and an answer key per section.
// A question whose answer is missing from its options fails the render.
func Render(rng *rand.Rand, set vocab.QuizSet, kinds ...vocab.QuizKind) (string, error) {
	if len(kinds) == 0 {
		kinds = vocab.AllKinds
	}
	include := make(map[vocab.QuizKind]bool, len(kinds))
	for _, k := range kinds {
		include[k] = true
	}

	var b strings.Builder
	b.WriteString(Header)
	hasContent := false

	for _, kind := range vocab.AllKinds {
		qs := set.Get(kind)
		if !include[kind] || len(qs) == 0 {
			continue
		}
		hasContent = true
		if err := writeSection(&b, rng, kind, qs); err != nil {
			return "", err
		}
	}

	if !hasContent {
		return NoQuestionsText, nil
	}
	return b.String(), nil
}

func writeSection(b *strings.Builder, rng *rand.Rand, kind vocab.QuizKind, qs []vocab.Question) error {
	fmt.Fprintf(b, "%s\n%s\n%s\n\n", rule, kind.Title(), rule)

	var key strings.Builder
	key.WriteString("\n--- 解答 ---\n")

	for i, q := range quiz.Shuffle(rng, qs) {
		n := i + 1
		letter, ok := AnswerLetter(q)
		if !ok {
			return fmt.Errorf("render %s question %d (%q): %w", kind, n, q.Word, quiz.ErrAnswerNotInOptions)
		}
		fmt.Fprintf(b, "%d. %s\n   %s\n\n", n, promptLine(q), optionsLine(q.Options))
		fmt.Fprintf(&key, "%d. (%c)  ", n, letter)
	}

	b.WriteString(strings.TrimSpace(key.String()))
	b.WriteString("\n\n")
	return nil
}

func promptLine(q vocab.Question) string {
	switch q.Kind {
	case vocab.KindDefinition:
		return "(   ) " + q.Prompt
	case vocab.KindSentence:
		return strings.Replace(q.Prompt, vocab.ClozeMarker, "("+vocab.ClozeMarker+")", 1)
	default:
		return q.Prompt
	}
}

func optionsLine(opts []string) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = fmt.Sprintf("%c. %s", OptionLetter(i), o)
	}
	return strings.Join(parts, optionSep)
}

// OptionLetter returns A, B, C... for option index i.
func OptionLetter(i int) rune {
	return rune('A' + i)
}

// AnswerLetter returns the letter of the slot holding the answer.
func AnswerLetter(q vocab.Question) (rune, bool) {
	for i, o := range q.Options {
		if o == q.Word {
			return OptionLetter(i), true
		}
	}
	return 0, false
}
