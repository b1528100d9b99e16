package contentgen

import "github.com/abhisek/cihui/internal/llm"

func str(desc string) map[string]any {
	s := map[string]any{"type": "string"}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func arr(items map[string]any, desc string) map[string]any {
	s := map[string]any{"type": "array", "items": items}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func obj(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

var cardItem = obj(map[string]any{
	"word": str(""),
	"charDefinitions": arr(obj(map[string]any{
		"char":       str("字或詞組"),
		"definition": str("對應的解釋"),
	}, "char", "definition"), "詞彙中每個字或詞組的個別解釋"),
	"definition": str(""),
	"sentences":  arr(str(""), ""),
}, "word", "charDefinitions", "definition", "sentences")

// StructuredCardsSchema is the response of the structured parse.
var StructuredCardsSchema = &llm.Schema{
	Name:        "structured-cards",
	Description: "Learning cards parsed from a structured vocabulary list",
	Definition:  obj(map[string]any{"cards": arr(cardItem, "")}, "cards"),
}

// LearningCardsSchema is the response of learning card generation.
var LearningCardsSchema = &llm.Schema{
	Name:        "learning-cards",
	Description: "One learning card per requested word",
	Definition:  obj(map[string]any{"cards": arr(cardItem, "")}, "cards"),
}

// WordsSchema is the response of word extraction.
var WordsSchema = &llm.Schema{
	Name:        "extracted-words",
	Description: "Vocabulary extracted from free text",
	Definition: obj(map[string]any{
		"words": arr(str(""), "從文本中提取出的詞彙或成語列表"),
	}, "words"),
}

const optionsDescription = "包含一個正確答案和三個干擾項的四個選項，選項必須來自提供的詞彙列表。"

func quizSchema(name, promptField, promptDesc string) *llm.Schema {
	return &llm.Schema{
		Name:        name,
		Description: "Multiple-choice vocabulary questions",
		Definition: obj(map[string]any{
			"questions": arr(obj(map[string]any{
				"word":      str("正確的詞彙"),
				promptField: str(promptDesc),
				"options":   arr(str(""), optionsDescription),
			}, "word", promptField, "options"), ""),
		}, "questions"),
	}
}

// DefinitionQuizSchema is the response of definition quiz generation.
var DefinitionQuizSchema = quizSchema("quiz-definition", "definition", "該詞彙的解釋")

// SentenceQuizSchema is the response of sentence quiz generation.
var SentenceQuizSchema = quizSchema("quiz-sentence", "sentence", "包含 '____' 和提示的完整句子")

// ConceptQuizSchema is the response of concept quiz generation.
var ConceptQuizSchema = quizSchema("quiz-concept", "scenario", "描述情境和提示的完整文字")

// MatchesSchema is the response of sentence matching.
var MatchesSchema = &llm.Schema{
	Name:        "sentence-matches",
	Description: "Words paired with the sentence from the text that uses them",
	Definition: obj(map[string]any{
		"matches": arr(obj(map[string]any{
			"word":     str(""),
			"sentence": str(""),
		}, "word", "sentence"), ""),
	}, "matches"),
}
