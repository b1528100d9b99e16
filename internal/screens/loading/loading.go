// Package loading runs a background job behind a spinner and replaces
// itself with the job's result screen.
package loading

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// Job is the work behind a loading screen. progress reports stage
// messages; the returned screen replaces the loading screen.
type Job func(ctx context.Context, progress func(stage string)) (screen.Screen, error)

type stageMsg struct {
	owner *LoadingScreen
	stage string
}

type doneMsg struct {
	owner *LoadingScreen
	next  screen.Screen
	err   error
}

// LoadingScreen shows a spinner and the latest stage until the job ends.
// A failed job leaves its message on screen.
type LoadingScreen struct {
	title   string
	job     Job
	spinner spinner.Model
	stage   string
	errText string
	done    bool

	cancel context.CancelFunc
	ch     chan tea.Msg
}

var _ screen.Screen = (*LoadingScreen)(nil)
var _ screen.Closer = (*LoadingScreen)(nil)

// New creates a loading screen that starts job on Init.
func New(title, stage string, job Job) *LoadingScreen {
	return &LoadingScreen{
		title: title,
		job:   job,
		stage: stage,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *LoadingScreen) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.ch = make(chan tea.Msg, 16)

	go func() {
		next, err := s.job(ctx, func(stage string) {
			select {
			case s.ch <- stageMsg{owner: s, stage: stage}:
			default:
			}
		})
		select {
		case s.ch <- doneMsg{owner: s, next: next, err: err}:
		case <-ctx.Done():
		}
	}()

	return tea.Batch(s.spinner.Tick, s.wait())
}

func (s *LoadingScreen) wait() tea.Cmd {
	ch := s.ch
	return func() tea.Msg { return <-ch }
}

// Close cancels the job.
func (s *LoadingScreen) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *LoadingScreen) Title() string {
	return s.title
}

func (s *LoadingScreen) KeyHints() []layout.KeyHint {
	if s.done {
		return []layout.KeyHint{{Key: "Esc", Description: "返回"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "取消"}}
}

// Stage returns the latest progress message.
func (s *LoadingScreen) Stage() string {
	return s.stage
}

// Err returns the failure message, if the job failed.
func (s *LoadingScreen) Err() string {
	return s.errText
}

func (s *LoadingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		if msg.owner != s {
			return s, nil
		}
		s.stage = msg.stage
		return s, s.wait()

	case doneMsg:
		if msg.owner != s {
			return s, nil
		}
		s.done = true
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return s, nil
			}
			s.errText = analysis.Message(msg.err)
			return s, nil
		}
		return s, router.Replace(msg.next)

	case spinner.TickMsg:
		if s.done {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LoadingScreen) View(width, height int) string {
	var body string
	if s.errText != "" {
		body = strings.Join([]string{
			theme.ErrorText.Render(s.errText),
			"",
			theme.Hint.Render("按 Esc 返回"),
		}, "\n")
	} else {
		body = s.spinner.View() + "  " + lipgloss.NewStyle().Foreground(theme.Text).Render(s.stage)
	}
	body = lipgloss.NewStyle().Width(min(width-4, 60)).Align(lipgloss.Center).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}
