package overrides

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestStore_PutPersistsUnderTrimmedKey(t *testing.T) {
	b := store.NewMemoryBackend()
	s, err := Load(t.Context(), b, quietLogger())
	require.NoError(t, err)

	c := vocab.CustomContent{ImageURL: "data:image/png;base64,AAA", Sentence: "我今天很忙碌。"}
	require.NoError(t, s.Put(t.Context(), "  忙碌,悠閒  ", "忙碌", c))

	assert.Equal(t, vocab.WordContent{"忙碌": c}, s.ForVocab("忙碌,悠閒"))

	raw, ok, err := b.Get(t.Context(), Key)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "data:image/png;base64,AAA", persisted["忙碌,悠閒"]["忙碌"]["imageUrl"])
	assert.Equal(t, "我今天很忙碌。", persisted["忙碌,悠閒"]["忙碌"]["sentence"])

	reloaded, err := Load(t.Context(), b, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, s.ForVocab("忙碌,悠閒"), reloaded.ForVocab("忙碌,悠閒"))
}

func TestStore_DeleteAndClear(t *testing.T) {
	b := store.NewMemoryBackend()
	s, _ := Load(t.Context(), b, quietLogger())
	ctx := t.Context()

	require.NoError(t, s.Put(ctx, "A", "x", vocab.CustomContent{Sentence: "x"}))
	require.NoError(t, s.Put(ctx, "A", "y", vocab.CustomContent{Sentence: "y"}))
	require.NoError(t, s.Put(ctx, "B", "z", vocab.CustomContent{Sentence: "z"}))

	require.NoError(t, s.DeleteWord(ctx, "A", "x"))
	assert.Len(t, s.ForVocab("A"), 1)

	require.NoError(t, s.DeleteVocab(ctx, " A "))
	assert.Empty(t, s.ForVocab("A"))
	assert.Equal(t, []string{"B"}, s.VocabKeys())

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.VocabKeys())
	_, ok, _ := b.Get(ctx, Key)
	assert.False(t, ok, "namespace removed")
}

func TestStore_EmptyKey(t *testing.T) {
	s, _ := Load(t.Context(), store.NewMemoryBackend(), quietLogger())
	err := s.Put(t.Context(), "   ", "w", vocab.CustomContent{})
	assert.True(t, errors.Is(err, ErrEmptyVocabKey))
	assert.True(t, errors.Is(s.DeleteVocab(t.Context(), ""), ErrEmptyVocabKey))
}

func TestStore_CorruptDefaultsToEmpty(t *testing.T) {
	b := store.NewMemoryBackend()
	require.NoError(t, b.Set(t.Context(), Key, []byte("[1,2")))
	s, err := Load(t.Context(), b, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, s.VocabKeys())
}

func TestStore_ForVocabReturnsCopy(t *testing.T) {
	s, _ := Load(t.Context(), store.NewMemoryBackend(), quietLogger())
	require.NoError(t, s.Put(t.Context(), "A", "x", vocab.CustomContent{Sentence: "x"}))
	got := s.ForVocab("A")
	got["y"] = vocab.CustomContent{}
	assert.Len(t, s.ForVocab("A"), 1)
}

func TestMergeCard(t *testing.T) {
	card := vocab.LearningCard{Word: "忙碌", Sentences: []string{"s1", "s2", "s3"}}

	tests := []struct {
		name    string
		content vocab.WordContent
		want    []string
	}{
		{"no override", nil, []string{"s1", "s2", "s3"}},
		{"new sentence first", vocab.WordContent{"忙碌": {Sentence: "so"}}, []string{"so", "s1", "s2"}},
		{"duplicate moved to front", vocab.WordContent{"忙碌": {Sentence: "s3"}}, []string{"s3", "s1", "s2"}},
		{"blank override ignored", vocab.WordContent{"忙碌": {ImageURL: "data:x", Sentence: " "}}, []string{"s1", "s2", "s3"}},
		{"other word", vocab.WordContent{"悠閒": {Sentence: "so"}}, []string{"s1", "s2", "s3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeCard(card, tt.content)
			assert.Equal(t, tt.want, got.Sentences)
		})
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, card.Sentences, "input untouched")
}

func TestMergeCard_ShortCard(t *testing.T) {
	card := vocab.LearningCard{Word: "忙碌", Sentences: []string{"s1"}}
	got := MergeCard(card, vocab.WordContent{"忙碌": {Sentence: "so"}})
	assert.Equal(t, []string{"so", "s1"}, got.Sentences)
}

func TestSpliceSentenceQuestion(t *testing.T) {
	cards := []vocab.LearningCard{{Word: "忙碌", Definition: "事情很多，沒有空閒"}}
	q := vocab.Question{
		Kind:    vocab.KindSentence,
		Word:    "忙碌",
		Prompt:  "媽媽每天都很____。 (提示)",
		Options: []string{"悠閒", "忙碌", "快樂", "安靜"},
	}

	t.Run("override with word", func(t *testing.T) {
		content := vocab.WordContent{"忙碌": {Sentence: "爸爸工作很忙碌，忙碌到沒時間吃飯。"}}
		got, ok := SpliceSentenceQuestion(q, content, cards)
		assert.True(t, ok)
		assert.Equal(t, "爸爸工作很____，忙碌到沒時間吃飯。 (事情很多，沒有空閒)", got.Prompt)
		assert.Equal(t, q.Options, got.Options)
		assert.Equal(t, q.Word, got.Word)
	})

	t.Run("no card gives no hint", func(t *testing.T) {
		content := vocab.WordContent{"忙碌": {Sentence: "他很忙碌。"}}
		got, ok := SpliceSentenceQuestion(q, content, nil)
		assert.True(t, ok)
		assert.Equal(t, "他很____。", got.Prompt)
	})

	t.Run("override without word keeps generated prompt", func(t *testing.T) {
		content := vocab.WordContent{"忙碌": {Sentence: "他整天跑來跑去。"}}
		got, ok := SpliceSentenceQuestion(q, content, cards)
		assert.False(t, ok)
		assert.Equal(t, q.Prompt, got.Prompt)
	})

	t.Run("other kinds untouched", func(t *testing.T) {
		def := q
		def.Kind = vocab.KindDefinition
		content := vocab.WordContent{"忙碌": {Sentence: "他很忙碌。"}}
		_, ok := SpliceSentenceQuestion(def, content, cards)
		assert.False(t, ok)
	})
}

func TestImageAndSubject(t *testing.T) {
	content := vocab.WordContent{"忙碌": {ImageURL: "data:image/png;base64,AA", Sentence: "自訂句子"}}

	img, ok := ImageFor("忙碌", content)
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AA", img)
	_, ok = ImageFor("悠閒", content)
	assert.False(t, ok)

	card := vocab.LearningCard{Word: "忙碌", Sentences: []string{"第一句"}}
	assert.Equal(t, "自訂句子", IllustrationSubject(card, content))
	assert.Equal(t, "第一句", IllustrationSubject(card, nil))
	assert.Equal(t, "忙碌", IllustrationSubject(vocab.LearningCard{Word: "忙碌"}, nil))

	pre := PreexistingSentences([]string{"忙碌", "悠閒"}, content)
	assert.Equal(t, map[string]string{"忙碌": "自訂句子"}, pre)
}
