package tts

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		goos     string
		wantName string
		wantArgs []string
	}{
		{
			name:     "macOS default",
			settings: DefaultSettings(),
			goos:     "darwin",
			wantName: "say",
			wantArgs: []string{"-r", "175", "[[volm 1.00]] 忙碌"},
		},
		{
			name:     "macOS voice and rate",
			settings: Settings{Voice: "Meijia", Rate: 2, Volume: 0.5},
			goos:     "darwin",
			wantName: "say",
			wantArgs: []string{"-r", "350", "-v", "Meijia", "[[volm 0.50]] 忙碌"},
		},
		{
			name:     "linux clamps",
			settings: Settings{Rate: 9, Volume: -1},
			goos:     "linux",
			wantName: "espeak-ng",
			wantArgs: []string{"-v", "cmn", "-s", "350", "-a", "0", "忙碌"},
		},
		{
			name:     "custom command",
			settings: Settings{Command: "espeak", Voice: "zh", Rate: 0.5, Volume: 1},
			goos:     "darwin",
			wantName: "espeak",
			wantArgs: []string{"-v", "zh", "-s", "87", "-a", "100", "忙碌"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := Command(tt.settings, tt.goos, "忙碌")
			if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("Command() = %s %q, want %s %q", name, args, tt.wantName, tt.wantArgs)
			}
		})
	}
}

type recorder struct {
	mu    sync.Mutex
	texts []string
	block bool
}

func (r *recorder) run(ctx context.Context, _ string, args ...string) error {
	r.mu.Lock()
	r.texts = append(r.texts, args[len(args)-1])
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func TestSpeaker(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := &recorder{}
	s := NewWithRunner(DefaultSettings(), "linux", rec.run, logger)

	s.Speak("  ")
	s.Speak("你好")
	s.Cue(true)
	s.Wait()
	s.Cue(false)
	s.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.texts) != 3 {
		t.Fatalf("spoke %q, want 3 utterances", rec.texts)
	}
	if rec.texts[2] != CueIncorrect {
		t.Errorf("last utterance = %q", rec.texts[2])
	}
}

func TestSpeaker_InterruptsPrevious(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := &recorder{block: true}
	s := NewWithRunner(DefaultSettings(), "linux", rec.run, logger)

	s.Speak("一")
	s.Speak("二")
	s.Stop()
	s.Wait()
}

func TestConfigure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewWithRunner(DefaultSettings(), "linux", (&recorder{}).run, logger)
	s.Configure("zh", 3, 0.4)
	got := s.Settings()
	if got.Voice != "zh" || got.Rate != MaxRate || got.Volume != 0.4 {
		t.Errorf("settings = %+v", got)
	}
}
