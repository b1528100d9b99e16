// Package quiz holds the quiz kind picker, the question screen and the
// results screen.
package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/session"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// Feedback lines.
const (
	MsgCorrect   = "答對了！"
	MsgIncorrect = "答錯了，正確答案是："
)

// autoAdvanceMsg fires AutoAdvanceDelay after a correct answer.
type autoAdvanceMsg struct {
	owner *QuizScreen
	index int
}

// QuizScreen asks one question at a time.
type QuizScreen struct {
	deps    *screen.Deps
	session *session.Session
	choices components.MultiChoice

	art    *Illustrations
	image  components.Illustration
	gen    int
	cancel context.CancelFunc
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New starts a quiz of kind over questions. art may be nil to show no
// pictures.
func New(deps *screen.Deps, kind vocab.QuizKind, questions []vocab.Question, art *Illustrations) (*QuizScreen, error) {
	sess, err := session.New(deps.RNG, kind, questions)
	if err != nil {
		return nil, err
	}
	return fromSession(deps, sess, art), nil
}

func fromSession(deps *screen.Deps, sess *session.Session, art *Illustrations) *QuizScreen {
	s := &QuizScreen{deps: deps, session: sess, art: art}
	s.loadQuestion()
	return s
}

// Session exposes the running session.
func (s *QuizScreen) Session() *session.Session {
	return s.session
}

func (s *QuizScreen) loadQuestion() {
	if q, ok := s.session.Current(); ok {
		s.choices = components.NewMultiChoice(q.Options)
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.illustrate()
}

// Close abandons an unfinished session and its picture request.
func (s *QuizScreen) Close() {
	s.stopIllustration()
	s.session.Exit()
}

func (s *QuizScreen) Title() string {
	title := s.session.Kind.Title()
	if s.session.Round > 1 {
		title += fmt.Sprintf(" (第 %d 輪)", s.session.Round)
	}
	return title
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.session.Phase() {
	case session.PhaseAnsweredIncorrect, session.PhaseAnsweredCorrect:
		return []layout.KeyHint{
			{Key: "Enter", Description: "下一題"},
			{Key: "r", Description: "朗讀"},
			{Key: "Esc", Description: "離開測驗"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "作答"},
		{Key: "r", Description: "朗讀"},
		{Key: "Esc", Description: "離開測驗"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case autoAdvanceMsg:
		if msg.owner != s || !s.session.AutoAdvance(msg.index) {
			return s, nil
		}
		return s, s.afterAdvance()

	case illustrationMsg:
		s.illustrated(msg)
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "r" {
		if q, ok := s.session.Current(); ok {
			text, _ := q.Display()
			s.deps.Speak(strings.ReplaceAll(text, vocab.ClozeMarker, "空格"))
		}
		return s, nil
	}
	if msg.String() == "i" {
		if s.image.Failed {
			return s, s.illustrate()
		}
		return s, nil
	}

	switch s.session.Phase() {
	case session.PhaseAwaitingAnswer:
		var (
			picked string
			ok     bool
		)
		s.choices, picked, ok = s.choices.Update(msg)
		if !ok {
			return s, nil
		}
		return s, s.answer(picked)

	case session.PhaseAnsweredIncorrect:
		if msg.String() == "enter" || msg.String() == "n" {
			s.session.Next()
			return s, s.afterAdvance()
		}

	case session.PhaseAnsweredCorrect:
		if msg.String() == "enter" || msg.String() == "n" {
			s.session.AutoAdvance(s.session.Index())
			return s, s.afterAdvance()
		}
	}
	return s, nil
}

func (s *QuizScreen) answer(option string) tea.Cmd {
	q, _ := s.session.Current()
	outcome := s.session.Select(option)
	if outcome == session.OutcomeIgnored {
		return nil
	}
	s.choices.Reveal(option, q.Word)

	correct := outcome == session.OutcomeCorrect
	s.deps.Cue(correct)
	var cmds []tea.Cmd
	if !correct {
		cmds = append(cmds, tea.Raw("\a"))
	}
	if correct && s.deps.AutoAdvance {
		index := s.session.Index()
		cmds = append(cmds, tea.Tick(session.AutoAdvanceDelay, func(time.Time) tea.Msg {
			return autoAdvanceMsg{owner: s, index: index}
		}))
	}
	return tea.Batch(cmds...)
}

func (s *QuizScreen) afterAdvance() tea.Cmd {
	if res, ok := s.session.Result(); ok {
		return router.Replace(NewResults(s.deps, s.session, res, s.art))
	}
	s.loadQuestion()
	return s.illustrate()
}

func (s *QuizScreen) View(width, height int) string {
	q, ok := s.session.Current()
	if !ok {
		return ""
	}
	cw := min(width-4, 72)

	bar := components.NewProgressBar(
		fmt.Sprintf("第 %d / %d 題", s.session.Index()+1, s.session.Len()),
		float64(s.session.Index())/float64(s.session.Len()),
		false, cw,
	).View()

	text, hint := q.Display()
	prompt := lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(text)
	sections := []string{bar, "", prompt}
	if hint != "" {
		sections = append(sections, theme.Hint.Render("提示："+hint))
	}
	sections = append(sections, "", s.choices.View())
	if s.art != nil {
		if line := components.IllustrationLine(s.image, s.art.available()); line != "" {
			sections = append(sections, line)
		}
	}

	switch s.session.Phase() {
	case session.PhaseAnsweredCorrect:
		sections = append(sections, theme.Correct.Render(MsgCorrect))
	case session.PhaseAnsweredIncorrect:
		sections = append(sections, theme.Incorrect.Render(MsgIncorrect+q.Word))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
