package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

var fiveWords = []string{"如釋重負", "得不償失", "荒謬絕倫", "心照不宣", "忙碌"}

type fixture struct {
	mock      *llm.MockProvider
	pipeline  *Pipeline
	overrides *overrides.Store
	history   *history.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	backend := store.NewMemoryBackend()

	ov, err := overrides.Load(t.Context(), backend, logger)
	require.NoError(t, err)
	hist, err := history.Load(t.Context(), backend, logger)
	require.NoError(t, err)

	mock := llm.NewMockProvider()
	gen := contentgen.New(mock, nil, contentgen.DefaultConfig())
	return &fixture{
		mock:      mock,
		pipeline:  New(gen, ov, hist, quiz.NewRand(7), logger),
		overrides: ov,
		history:   hist,
	}
}

func (f *fixture) respond(purpose string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.mock.AddPurposeResponse(purpose, llm.MockResponse{Content: raw})
}

func (f *fixture) fail(purpose string) {
	f.mock.AddPurposeResponse(purpose, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("network down")}})
}

func cardsFor(words []string) map[string]any {
	cards := make([]map[string]any, len(words))
	for i, w := range words {
		cards[i] = map[string]any{
			"word":            w,
			"charDefinitions": []map[string]any{},
			"definition":      w + "的意思",
			"sentences":       []string{w + "一。", w + "二。", w + "三。"},
		}
	}
	return map[string]any{"cards": cards}
}

func questionsFor(field string, words []string) map[string]any {
	qs := make([]map[string]any, len(words))
	for i, w := range words {
		opts := []string{w}
		for _, o := range words {
			if o != w && len(opts) < vocab.OptionsPerQuestion {
				opts = append(opts, o)
			}
		}
		prompt := fmt.Sprintf("關於%s的題目", w)
		if field == "sentence" {
			prompt = "他____了。 (提示)"
		}
		qs[i] = map[string]any{"word": w, field: prompt, "options": opts}
	}
	return map[string]any{"questions": qs}
}

func (f *fixture) respondQuizzes(words []string) {
	f.respond(contentgen.PurposeQuizDef, questionsFor("definition", words))
	f.respond(contentgen.PurposeQuizSentence, questionsFor("sentence", words))
	f.respond(contentgen.PurposeQuizConcept, questionsFor("scenario", words))
}

func TestRun_ExtractionPathReachesQuizzes(t *testing.T) {
	f := newFixture(t)
	input := strings.Join(fiveWords, ",")
	f.respond(contentgen.PurposeParse, map[string]any{"cards": []any{}})
	f.respond(contentgen.PurposeExtract, map[string]any{"words": fiveWords})
	f.respond(contentgen.PurposeCards, cardsFor(fiveWords))
	f.respondQuizzes(fiveWords)

	var stages []string
	res, err := f.pipeline.Run(t.Context(), Request{Input: "  " + input + "\n", Progress: func(s string) { stages = append(stages, s) }})
	require.NoError(t, err)

	assert.Equal(t, input, res.VocabKey)
	assert.Equal(t, fiveWords, res.Words)
	assert.Len(t, res.Cards, 5)
	assert.Empty(t, res.Notice)
	assert.True(t, res.CanQuiz())
	for _, kind := range vocab.AllKinds {
		qs := res.Quizzes.Get(kind)
		require.Len(t, qs, 5, kind.String())
		for _, q := range qs {
			assert.Equal(t, kind, q.Kind)
			assert.Len(t, q.Options, vocab.OptionsPerQuestion)
			assert.Contains(t, q.Options, q.Word)
		}
	}
	assert.Equal(t, []string{StageAnalyzing, StageExtracting, StageCards, StageQuizzes}, stages)

	require.Equal(t, 1, f.history.Len())
	assert.Equal(t, input, f.history.Items()[0].Content)
	assert.Equal(t, history.DefaultName(input), f.history.Items()[0].Name)

	for _, p := range f.mock.Purposes {
		assert.NotEqual(t, "unknown", p)
	}
}

func TestRun_StructuredPathMergesOverrides(t *testing.T) {
	f := newFixture(t)
	input := "忙碌：事情很多。造句：他很忙碌。"
	key := vocab.VocabKey(input)
	require.NoError(t, f.overrides.Put(t.Context(), key, "忙碌", vocab.CustomContent{ImageURL: "data:image/png;base64,AA==", Sentence: "媽媽每天都很忙碌。"}))

	words := []string{"忙碌", "悠閒", "安靜", "快樂"}
	f.respond(contentgen.PurposeParse, cardsFor(words))
	f.respondQuizzes(words)

	res, err := f.pipeline.Run(t.Context(), Request{Input: input, HistoryName: "第一課"})
	require.NoError(t, err)

	card, ok := res.Card("忙碌")
	require.True(t, ok)
	assert.Equal(t, []string{"媽媽每天都很忙碌。", "忙碌一。", "忙碌二。"}, card.Sentences)

	var spliced vocab.Question
	for _, q := range res.Quizzes.Sentence {
		if q.Word == "忙碌" {
			spliced = q
		}
	}
	assert.Equal(t, "媽媽每天都很____。 (忙碌的意思)", spliced.Prompt)
	assert.Equal(t, "第一課", f.history.Items()[0].Name)
	assert.NotContains(t, f.mock.Purposes, contentgen.PurposeExtract)
}

func TestRun_PreexistingSentencesSentToCards(t *testing.T) {
	f := newFixture(t)
	input := "忙碌 悠閒"
	require.NoError(t, f.overrides.Put(t.Context(), input, "忙碌", vocab.CustomContent{Sentence: "他很忙碌。"}))
	f.respond(contentgen.PurposeParse, map[string]any{"cards": []any{}})
	f.respond(contentgen.PurposeExtract, map[string]any{"words": []string{"忙碌", "悠閒"}})
	f.respond(contentgen.PurposeCards, cardsFor([]string{"忙碌", "悠閒"}))

	_, err := f.pipeline.Run(t.Context(), Request{Input: input})
	require.NoError(t, err)

	last := f.mock.Calls[len(f.mock.Calls)-1]
	assert.Contains(t, last.Messages[0].Content, `"pre-existing_sentence": "他很忙碌。"`)
}

func TestRun_TooFewWordsKeepsCards(t *testing.T) {
	f := newFixture(t)
	f.respond(contentgen.PurposeParse, map[string]any{"cards": []any{}})
	f.respond(contentgen.PurposeExtract, map[string]any{"words": []string{"忙碌", "悠閒"}})
	f.respond(contentgen.PurposeCards, cardsFor([]string{"忙碌", "悠閒"}))

	res, err := f.pipeline.Run(t.Context(), Request{Input: "忙碌、悠閒"})
	require.NoError(t, err)

	assert.Equal(t, "產生測驗至少需要4個詞彙，但只偵測到 2 個。測驗功能將無法使用。", res.Notice)
	assert.Len(t, res.Cards, 2)
	assert.False(t, res.CanQuiz())
	assert.NotContains(t, f.mock.Purposes, contentgen.PurposeQuizDef)
}

func TestRun_NoQuestionsNotice(t *testing.T) {
	f := newFixture(t)
	words := []string{"忙碌", "悠閒", "安靜", "快樂"}
	f.respond(contentgen.PurposeParse, cardsFor(words))
	for _, p := range []string{contentgen.PurposeQuizDef, contentgen.PurposeQuizSentence, contentgen.PurposeQuizConcept} {
		f.respond(p, map[string]any{"questions": []any{}})
	}

	res, err := f.pipeline.Run(t.Context(), Request{Input: "x"})
	require.NoError(t, err)
	assert.Equal(t, MsgNoQuestions, res.Notice)
	assert.False(t, res.CanQuiz())
}

func TestRun_InvalidQuestionsDropped(t *testing.T) {
	f := newFixture(t)
	words := []string{"忙碌", "悠閒", "安靜", "快樂"}
	f.respond(contentgen.PurposeParse, cardsFor(words))
	f.respond(contentgen.PurposeQuizDef, map[string]any{"questions": []map[string]any{
		{"word": "忙碌", "definition": "d", "options": []string{"悠閒", "安靜", "快樂", "好"}},
		{"word": "安靜", "definition": "d", "options": []string{"安靜", "悠閒", "忙碌", "快樂"}},
	}})
	f.respond(contentgen.PurposeQuizSentence, questionsFor("sentence", words))
	f.respond(contentgen.PurposeQuizConcept, questionsFor("scenario", words))

	res, err := f.pipeline.Run(t.Context(), Request{Input: "x"})
	require.NoError(t, err)
	require.Len(t, res.Quizzes.Definition, 1)
	assert.Equal(t, "安靜", res.Quizzes.Definition[0].Word)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		setup func(f *fixture)
		want  string
	}{
		{
			name:  "empty input",
			input: "  \n",
			setup: func(*fixture) {},
			want:  MsgEmptyInput,
		},
		{
			name:  "parse fails",
			input: "x",
			setup: func(f *fixture) { f.fail(contentgen.PurposeParse) },
			want:  MsgRequestFailed,
		},
		{
			name:  "no words extracted",
			input: "x",
			setup: func(f *fixture) {
				f.respond(contentgen.PurposeParse, map[string]any{"cards": []any{}})
				f.respond(contentgen.PurposeExtract, map[string]any{"words": []string{}})
			},
			want: MsgNoWords,
		},
		{
			name:  "one quiz kind fails",
			input: "x",
			setup: func(f *fixture) {
				words := []string{"忙碌", "悠閒", "安靜", "快樂"}
				f.respond(contentgen.PurposeParse, cardsFor(words))
				f.respond(contentgen.PurposeQuizDef, questionsFor("definition", words))
				f.fail(contentgen.PurposeQuizSentence)
				f.respond(contentgen.PurposeQuizConcept, questionsFor("scenario", words))
			},
			want: MsgRequestFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			res, err := f.pipeline.Run(t.Context(), Request{Input: tt.input})
			require.Error(t, err)
			assert.Nil(t, res)

			var ue *UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.want, ue.Message)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestRun_RequestsShareRunID(t *testing.T) {
	f := newFixture(t)
	repo := &runRecorder{}
	logger, _ := test.NewNullLogger()
	logged := llm.WithLogging(f.mock, "mock", repo, logger)
	f.pipeline.gen = contentgen.New(logged, nil, contentgen.DefaultConfig())

	words := []string{"忙碌", "悠閒", "安靜", "快樂"}
	f.respond(contentgen.PurposeParse, cardsFor(words))
	f.respondQuizzes(words)

	res, err := f.pipeline.Run(t.Context(), Request{Input: "x", SkipHistory: true})
	require.NoError(t, err)
	require.Len(t, repo.ids, 4)
	for _, id := range repo.ids {
		assert.Equal(t, res.ID, id)
	}
	assert.Zero(t, f.history.Len())
}

type runRecorder struct {
	store.EventRepo
	mu  sync.Mutex
	ids []string
}

func (r *runRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, data.RequestID)
	return nil
}

func TestVoiceMaterial(t *testing.T) {
	f := newFixture(t)
	f.mock.AddPurposeResponse(contentgen.PurposeVoiceChars, llm.MockResponse{Content: json.RawMessage("^爽#涼爽@涼爽的爽,爽#涼爽@涼爽")})
	f.fail(contentgen.PurposeVoiceWords)

	out, err := f.pipeline.VoiceChars(t.Context(), Request{Input: "爽"})
	require.NoError(t, err)
	assert.Equal(t, "^爽#涼爽@涼爽的爽,爽#涼爽@涼爽", out)
	assert.Equal(t, 1, f.history.Len())

	_, err = f.pipeline.VoiceWords(t.Context(), Request{Input: "皺巴巴"}, contentgen.WordsWithKeywords)
	assert.Equal(t, MsgRequestFailed, Message(err))

	_, err = f.pipeline.VoiceChars(t.Context(), Request{Input: " "})
	assert.Equal(t, MsgEmptyChars, Message(err))
	_, err = f.pipeline.VoiceWords(t.Context(), Request{Input: ""}, contentgen.WordsPlain)
	assert.Equal(t, MsgEmptyWords, Message(err))
}

func TestMessage_NonUserError(t *testing.T) {
	assert.Equal(t, MsgRequestFailed, Message(errors.New("boom")))
}
