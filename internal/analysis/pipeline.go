// Package analysis turns raw input into learning cards and quizzes,
// applying local overrides on the way.
package analysis

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
)

// MinQuizWords is the fewest words quizzes can be built from: one answer
// and three distractors.
const MinQuizWords = vocab.OptionsPerQuestion

// Progress messages shown while a run is in flight.
const (
	StageAnalyzing  = "正在分析您輸入的內容..."
	StageStructured = "偵測到結構化資料，正在為您準備教材..."
	StageExtracting = "正在分析文本並提取詞彙..."
	StageCards      = "正在為您準備學習卡片..."
	StageQuizzes    = "正在為您產生個人化的測驗..."
	StageVoiceChars = "正在為您產生語音教材..."
	StageVoiceWords = "正在為您產生語詞教材..."
)

// Generator is the subset of contentgen.Generator the pipeline uses.
type Generator interface {
	ParseStructured(ctx context.Context, text string) ([]vocab.LearningCard, error)
	ExtractWords(ctx context.Context, text string) ([]string, error)
	LearningCards(ctx context.Context, words []string, preexisting map[string]string) ([]vocab.LearningCard, error)
	Quiz(ctx context.Context, kind vocab.QuizKind, words []string, cards []vocab.LearningCard) ([]vocab.Question, error)
	VoiceCharMaterial(ctx context.Context, chars string) (string, error)
	VoiceWordMaterial(ctx context.Context, text string, variant contentgen.WordVariant) (string, error)
}

// Request is one analysis run.
type Request struct {
	Input string

	// HistoryName labels the history entry. Blank uses the default name.
	HistoryName string

	// SkipHistory leaves the history untouched.
	SkipHistory bool

	// Progress, if set, receives stage messages.
	Progress func(stage string)
}

// Pipeline runs analyses.
type Pipeline struct {
	gen       Generator
	overrides *overrides.Store
	history   *history.Store
	log       logrus.FieldLogger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Pipeline. history may be nil.
func New(gen Generator, ov *overrides.Store, hist *history.Store, rng *rand.Rand, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{gen: gen, overrides: ov, history: hist, rng: rng, log: log}
}

// Run analyzes req.Input. Failures are *UserError values. A result with
// a Notice is a success whose quiz features are partly unavailable.
func (p *Pipeline) Run(ctx context.Context, req Request) (*vocab.Analysis, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, userError(MsgEmptyInput, nil)
	}

	id := uuid.NewString()
	ctx = llm.WithRunID(ctx, id)
	log := p.log.WithField("run", id)
	start := time.Now()
	progress := func(stage string) {
		if req.Progress != nil {
			req.Progress(stage)
		}
	}

	key := vocab.VocabKey(input)
	content := p.overrides.ForVocab(key)
	result := &vocab.Analysis{ID: id, VocabKey: key}

	progress(StageAnalyzing)
	p.saveHistory(ctx, req, input, log)

	parsed, err := p.gen.ParseStructured(ctx, input)
	if err != nil {
		return nil, p.fail(log, "structured parse", err)
	}

	if len(parsed) > 0 {
		progress(StageStructured)
		result.Words = lo.Map(parsed, func(c vocab.LearningCard, _ int) string { return c.Word })
		result.Cards = overrides.MergeCards(parsed, content)
	} else {
		progress(StageExtracting)
		words, err := p.gen.ExtractWords(ctx, input)
		if err != nil {
			return nil, p.fail(log, "extract words", err)
		}
		if len(words) == 0 {
			log.Info("no words extracted")
			return nil, userError(MsgNoWords, nil)
		}
		result.Words = words

		progress(StageCards)
		cards, err := p.gen.LearningCards(ctx, words, overrides.PreexistingSentences(words, content))
		if err != nil {
			return nil, p.fail(log, "learning cards", err)
		}
		result.Cards = cards
	}

	if len(result.Words) < MinQuizWords {
		result.Notice = MsgTooFewWords(len(result.Words))
		log.WithField("words", len(result.Words)).Info("too few words for quizzes")
		return result, nil
	}

	progress(StageQuizzes)
	quizzes, err := p.quizzes(ctx, result.Words, result.Cards, log)
	if err != nil {
		return nil, p.fail(log, "quizzes", err)
	}
	quizzes.Sentence = overrides.SpliceSentenceQuestions(quizzes.Sentence, content, result.Cards)
	result.Quizzes = quizzes

	if quizzes.Empty() {
		result.Notice = MsgNoQuestions
	}

	log.WithFields(logrus.Fields{
		"words":     len(result.Words),
		"questions": quizzes.Count(),
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("analysis complete")
	return result, nil
}

// quizzes generates the three quiz kinds concurrently. Any failure fails
// the whole set.
func (p *Pipeline) quizzes(ctx context.Context, words []string, cards []vocab.LearningCard, log logrus.FieldLogger) (vocab.QuizSet, error) {
	raw := make([][]vocab.Question, len(vocab.AllKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range vocab.AllKinds {
		g.Go(func() error {
			qs, err := p.gen.Quiz(gctx, kind, words, cards)
			if err != nil {
				return err
			}
			raw[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return vocab.QuizSet{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var set vocab.QuizSet
	for i, kind := range vocab.AllKinds {
		qs, err := quiz.Normalize(p.rng, kind, raw[i], quiz.DefaultValidators()...)
		if err != nil {
			log.WithError(err).WithField("kind", kind.String()).Warn("dropped invalid questions")
		}
		set.Set(kind, qs)
	}
	return set, nil
}

// saveHistory records the input before any AI call. A write failure is
// logged and does not stop the run.
func (p *Pipeline) saveHistory(ctx context.Context, req Request, input string, log logrus.FieldLogger) {
	if req.SkipHistory || p.history == nil {
		return
	}
	if _, err := p.history.Add(ctx, vocab.HistoryItem{Name: req.HistoryName, Content: input}); err != nil {
		log.WithError(err).Warn("failed to save history")
	}
}

func (p *Pipeline) fail(log logrus.FieldLogger, step string, err error) error {
	if errors.Is(err, context.Canceled) {
		log.WithField("step", step).Info("analysis cancelled")
		return err
	}
	log.WithError(err).WithField("step", step).Warn("analysis failed")
	return userError(MsgRequestFailed, err)
}

// VoiceChars produces voice material for a run of characters.
func (p *Pipeline) VoiceChars(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Input) == "" {
		return "", userError(MsgEmptyChars, nil)
	}
	return p.material(ctx, req, StageVoiceChars, func(ctx context.Context, input string) (string, error) {
		return p.gen.VoiceCharMaterial(ctx, input)
	})
}

// VoiceWords produces voice material for a word list.
func (p *Pipeline) VoiceWords(ctx context.Context, req Request, variant contentgen.WordVariant) (string, error) {
	if strings.TrimSpace(req.Input) == "" {
		return "", userError(MsgEmptyWords, nil)
	}
	return p.material(ctx, req, StageVoiceWords, func(ctx context.Context, input string) (string, error) {
		return p.gen.VoiceWordMaterial(ctx, input, variant)
	})
}

func (p *Pipeline) material(ctx context.Context, req Request, stage string, fn func(context.Context, string) (string, error)) (string, error) {
	input := strings.TrimSpace(req.Input)
	ctx = llm.WithRunID(ctx, uuid.NewString())
	log := p.log.WithField("stage", stage)

	if req.Progress != nil {
		req.Progress(stage)
	}
	p.saveHistory(ctx, req, input, log)

	out, err := fn(ctx, req.Input)
	if err != nil {
		return "", p.fail(log, "material", err)
	}
	return out, nil
}
