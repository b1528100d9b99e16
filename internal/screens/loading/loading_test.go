package loading

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string { return "next" }
func (s *stubScreen) Title() string { return "next" }

// drain feeds job messages into the screen until the job is done.
func drain(t *testing.T, s *LoadingScreen) tea.Cmd {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		msgc := make(chan tea.Msg, 1)
		go func() { msgc <- s.wait()() }()
		select {
		case msg := <-msgc:
			_, cmd := s.Update(msg)
			if _, ok := msg.(doneMsg); ok {
				return cmd
			}
		case <-timeout:
			t.Fatal("job did not finish")
		}
	}
}

func TestLoading_SuccessReplaces(t *testing.T) {
	next := &stubScreen{}
	s := New("解析", analysis.StageAnalyzing, func(_ context.Context, progress func(string)) (screen.Screen, error) {
		progress(analysis.StageExtracting)
		return next, nil
	})
	s.Init()

	cmd := drain(t, s)
	if cmd == nil {
		t.Fatal("expected replace command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen != next {
		t.Fatalf("got %#v, want ReplaceScreenMsg with next screen", msg)
	}
	if s.Stage() != analysis.StageExtracting {
		t.Errorf("stage = %q", s.Stage())
	}
}

func TestLoading_FailureShowsMessage(t *testing.T) {
	s := New("解析", analysis.StageAnalyzing, func(context.Context, func(string)) (screen.Screen, error) {
		return nil, &analysis.UserError{Message: analysis.MsgNoWords}
	})
	s.Init()

	if cmd := drain(t, s); cmd != nil {
		t.Error("failed job should not navigate")
	}
	if s.Err() != analysis.MsgNoWords {
		t.Errorf("err = %q", s.Err())
	}
	if got := s.View(80, 20); got == "" {
		t.Error("empty view")
	}
}

func TestLoading_CloseCancelsJob(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan error, 1)
	s := New("解析", analysis.StageAnalyzing, func(ctx context.Context, _ func(string)) (screen.Screen, error) {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return nil, ctx.Err()
	})
	s.Init()
	<-started
	s.Close()

	select {
	case err := <-stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("job stopped with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not cancelled")
	}
}

func TestLoading_IgnoresOtherOwners(t *testing.T) {
	s := New("解析", analysis.StageAnalyzing, nil)
	other := New("解析", analysis.StageAnalyzing, nil)
	_, cmd := s.Update(doneMsg{owner: other, next: &stubScreen{}})
	if cmd != nil || s.done {
		t.Error("message from another loading screen was handled")
	}
}
