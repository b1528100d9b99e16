package contentgen

import (
	"context"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Messages returned instead of calling the model on empty input.
const (
	NoCharsText = "請提供生字列表。"
	NoWordsText = "請提供語詞列表。"
)

// WordVariant selects the voice word material format.
type WordVariant int

const (
	// WordsWithKeywords pairs each word with an image search keyword.
	WordsWithKeywords WordVariant = iota
	// WordsPlain repeats the word in place of the keyword.
	WordsPlain
)

var separators = regexp.MustCompile(`[\s,，、]+`)

const fence = "```"

// SplitWords splits a word list on whitespace and Chinese or Latin commas.
func SplitWords(text string) []string {
	return lo.Filter(separators.Split(text, -1), func(w string, _ int) bool {
		return w != ""
	})
}

// StripSeparators removes every separator, leaving a run of characters.
func StripSeparators(text string) string {
	return separators.ReplaceAllString(text, "")
}

// VoiceCharMaterial produces one `^字#語詞@語詞的字,字#語詞@語詞` line per
// character in chars.
func (g *Generator) VoiceCharMaterial(ctx context.Context, chars string) (string, error) {
	list := StripSeparators(chars)
	if list == "" {
		return NoCharsText, nil
	}
	prompt, err := render("voice-chars", voiceData{Chars: list})
	if err != nil {
		return "", err
	}
	resp, err := g.generate(ctx, PurposeVoiceChars, prompt, nil)
	if err != nil {
		return "", err
	}
	return stripFence(resp.Text()), nil
}

// VoiceWordMaterial produces the three-part word material: structured
// lines, numbered sentences and the word list, separated by blank lines.
func (g *Generator) VoiceWordMaterial(ctx context.Context, text string, variant WordVariant) (string, error) {
	words := SplitWords(text)
	if len(words) == 0 {
		return NoWordsText, nil
	}
	name, purpose := "voice-words", PurposeVoiceWords
	if variant == WordsPlain {
		name, purpose = "voice-words-2", PurposeVoiceWords2
	}
	prompt, err := render(name, voiceData{Words: strings.Join(words, "、")})
	if err != nil {
		return "", err
	}
	resp, err := g.generate(ctx, purpose, prompt, nil)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(stripFence(resp.Text()), "---", "\n\n"), nil
}

// stripFence removes a code fence wrapping the whole response.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2*len(fence) && strings.HasPrefix(s, fence) && strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(s[len(fence) : len(s)-len(fence)])
	}
	return s
}
