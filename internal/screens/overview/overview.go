// Package overview is the menu shown after an analysis: learning cards,
// quizzes, worksheet and material exports.
package overview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/samber/lo"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/illustrate"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/images"
	"github.com/abhisek/cihui/internal/screens/learn"
	"github.com/abhisek/cihui/internal/screens/loading"
	"github.com/abhisek/cihui/internal/screens/quiz"
	"github.com/abhisek/cihui/internal/screens/textview"
	"github.com/abhisek/cihui/internal/source"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/abhisek/cihui/internal/worksheet"
)

// Menu labels, in order.
const (
	LabelLearn      = "學習卡片"
	LabelQuiz       = "測驗"
	LabelWorksheet  = "作業單"
	LabelMaterial   = "學習資料"
	LabelVoiceChars = "語音教材：生字"
	LabelVoiceWords = "語音教材：語詞"
	LabelVoicePlain = "語音教材：語詞（無關鍵字）"
	LabelImages     = "圖片管理"
)

const (
	itemLearn = iota
	itemQuiz
	itemWorksheet
	itemMaterial
	itemVoiceChars
	itemVoiceWords
	itemVoicePlain
	itemImages
)

// Stage shown while a URL is read.
const StageFetching = "正在讀取網頁內容..."

// MsgFetchFailed is shown when a URL cannot be read.
const MsgFetchFailed = "無法讀取網頁內容，請確認網址是否正確。"

// Analyze returns a loading screen that analyzes input and then shows
// the overview. Input that is a URL is fetched and reduced to its
// article text first.
func Analyze(deps *screen.Deps, input string) *loading.LoadingScreen {
	return loading.New("解析中", analysis.StageAnalyzing, analyzeJob(deps, input))
}

func analyzeJob(deps *screen.Deps, input string) loading.Job {
	return func(ctx context.Context, progress func(string)) (screen.Screen, error) {
		req := analysis.Request{Input: input, Progress: progress}
		if source.IsURL(strings.TrimSpace(input)) && deps.Fetcher != nil {
			progress(StageFetching)
			article, err := deps.Fetcher.Fetch(ctx, strings.TrimSpace(input))
			if err != nil {
				deps.Logger().WithError(err).WithField("url", input).Warn("fetch failed")
				return nil, &analysis.UserError{Message: MsgFetchFailed, Err: err}
			}
			req.Input = article.Input()
			req.HistoryName = article.Title
		}
		a, err := deps.Analyzer.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		return New(deps, a), nil
	}
}

// OverviewScreen offers everything that can be done with an analysis.
type OverviewScreen struct {
	deps     *screen.Deps
	analysis *vocab.Analysis
	cache    *illustrate.Cache
	menu     components.Menu
	errText  string
}

var _ screen.Screen = (*OverviewScreen)(nil)

// New creates the overview for a.
func New(deps *screen.Deps, a *vocab.Analysis) *OverviewScreen {
	s := &OverviewScreen{deps: deps, analysis: a}
	if deps.Illustrator != nil {
		s.cache = illustrate.NewCache(deps.Illustrator, filepath.Join(deps.ImageDir(), a.ID), deps.Logger())
	}

	items := []components.MenuItem{
		itemLearn:      {Label: LabelLearn, Action: s.learn},
		itemQuiz:       {Label: LabelQuiz, Action: s.quiz},
		itemWorksheet:  {Label: LabelWorksheet, Action: s.worksheet},
		itemMaterial:   {Label: LabelMaterial, Action: s.material},
		itemVoiceChars: {Label: LabelVoiceChars, Action: s.voiceChars},
		itemVoiceWords: {Label: LabelVoiceWords, Action: func() tea.Cmd { return s.voiceWords(contentgen.WordsWithKeywords) }},
		itemVoicePlain: {Label: LabelVoicePlain, Action: func() tea.Cmd { return s.voiceWords(contentgen.WordsPlain) }},
		itemImages:     {Label: LabelImages, Action: s.images},
	}
	items[itemQuiz].Disabled = !a.CanQuiz()
	items[itemWorksheet].Disabled = !a.CanQuiz()
	items[itemImages].Disabled = deps.Overrides == nil
	s.menu = components.NewMenu(items)
	return s
}

// Analysis returns the analysis shown.
func (s *OverviewScreen) Analysis() *vocab.Analysis {
	return s.analysis
}

func (s *OverviewScreen) learn() tea.Cmd {
	return router.Push(learn.New(s.deps, s.analysis, s.cache))
}

func (s *OverviewScreen) quiz() tea.Cmd {
	return router.Push(quiz.NewSelect(s.deps, s.analysis, s.cache))
}

func (s *OverviewScreen) worksheet() tea.Cmd {
	text, err := worksheet.Render(s.deps.RNG, s.analysis.Quizzes)
	if err != nil {
		s.deps.Logger().WithError(err).Warn("render worksheet failed")
		s.errText = analysis.MsgRequestFailed
		return nil
	}
	return router.Push(textview.New(s.deps, LabelWorksheet, "worksheet", text))
}

func (s *OverviewScreen) material() tea.Cmd {
	text := worksheet.RenderLearningMaterial(s.analysis.Cards)
	return router.Push(textview.New(s.deps, LabelMaterial, "material", text))
}

func (s *OverviewScreen) voiceChars() tea.Cmd {
	chars := string(lo.Uniq([]rune(strings.Join(s.analysis.Words, ""))))
	return router.Push(loading.New(LabelVoiceChars, analysis.StageVoiceChars, func(ctx context.Context, progress func(string)) (screen.Screen, error) {
		text, err := s.deps.Analyzer.VoiceChars(ctx, analysis.Request{Input: chars, SkipHistory: true, Progress: progress})
		if err != nil {
			return nil, err
		}
		return textview.New(s.deps, LabelVoiceChars, "voice-chars", text), nil
	}))
}

func (s *OverviewScreen) voiceWords(variant contentgen.WordVariant) tea.Cmd {
	label, slug := LabelVoiceWords, "voice-words"
	if variant == contentgen.WordsPlain {
		label, slug = LabelVoicePlain, "voice-words-plain"
	}
	words := strings.Join(s.analysis.Words, "、")
	return router.Push(loading.New(label, analysis.StageVoiceWords, func(ctx context.Context, progress func(string)) (screen.Screen, error) {
		text, err := s.deps.Analyzer.VoiceWords(ctx, analysis.Request{Input: words, SkipHistory: true, Progress: progress}, variant)
		if err != nil {
			return nil, err
		}
		return textview.New(s.deps, label, slug, text), nil
	}))
}

func (s *OverviewScreen) images() tea.Cmd {
	return router.Push(images.New(s.deps, s.analysis.VocabKey))
}

func (s *OverviewScreen) Init() tea.Cmd {
	return nil
}

func (s *OverviewScreen) Title() string {
	return "解析結果"
}

func (s *OverviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "Enter", Description: "確認"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *OverviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		s.errText = ""
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *OverviewScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	a := s.analysis

	summary := fmt.Sprintf("共 %d 個詞彙，%d 題測驗", len(a.Cards), a.Quizzes.Count())
	words := layout.Truncate(strings.Join(a.Words, "、"), cw-4)

	sections := []string{
		theme.Title.Render(summary),
		theme.Subtitle.Render(words),
	}
	if a.Notice != "" {
		sections = append(sections, "", theme.Notice.Width(cw).Render(a.Notice))
	}
	if s.errText != "" {
		sections = append(sections, "", theme.ErrorText.Render(s.errText))
	}
	sections = append(sections, "", s.menu.View())

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
