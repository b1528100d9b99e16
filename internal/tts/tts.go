// Package tts reads text aloud through the platform speech command.
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Rate and volume bounds.
const (
	MinRate   = 0.5
	MaxRate   = 2.0
	MinVolume = 0.0
	MaxVolume = 1.0

	baseWordsPerMinute = 175
)

// Spoken cues for quiz feedback.
const (
	CueCorrect   = "答對了"
	CueIncorrect = "再想想"
)

// Settings controls speech output. Command overrides the platform
// default program.
type Settings struct {
	Voice   string  `mapstructure:"voice"`
	Rate    float64 `mapstructure:"rate"`
	Volume  float64 `mapstructure:"volume"`
	Command string  `mapstructure:"command"`
}

// DefaultSettings speaks at normal rate and full volume with the
// platform's default voice.
func DefaultSettings() Settings {
	return Settings{Rate: 1.0, Volume: 1.0}
}

// Runner executes a speech command and waits for it.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Speaker speaks one utterance at a time; a new one interrupts the last.
// It is safe for concurrent use.
type Speaker struct {
	goos string
	run  Runner
	log  logrus.FieldLogger

	mu       sync.Mutex
	settings Settings
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a Speaker for the running platform.
func New(settings Settings, log logrus.FieldLogger) *Speaker {
	return NewWithRunner(settings, runtime.GOOS, execRunner, log)
}

// NewWithRunner creates a Speaker with an explicit platform and runner.
func NewWithRunner(settings Settings, goos string, run Runner, log logrus.FieldLogger) *Speaker {
	s := &Speaker{goos: goos, run: run, log: log}
	s.settings = clamp(settings)
	return s
}

// Configure changes voice, rate and volume for later utterances.
func (s *Speaker) Configure(voice string, rate, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Voice, s.settings.Rate, s.settings.Volume = voice, rate, volume
	s.settings = clamp(s.settings)
}

// Settings returns the current settings.
func (s *Speaker) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Speak starts reading text in the background and returns at once.
// Blank text is ignored.
func (s *Speaker) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	name, args := Command(s.settings, s.goos, text)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := s.run(ctx, name, args...); err != nil && ctx.Err() == nil {
			s.log.WithError(err).WithField("command", name).Debug("speech failed")
		}
	}()
}

// Cue speaks the feedback phrase for an answer.
func (s *Speaker) Cue(correct bool) {
	if correct {
		s.Speak(CueCorrect)
		return
	}
	s.Speak(CueIncorrect)
}

// Stop interrupts any utterance in progress.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Wait blocks until every started utterance has ended.
func (s *Speaker) Wait() {
	s.wg.Wait()
}

// Available reports whether the speech command can be found.
func (s *Speaker) Available() bool {
	name, _ := Command(s.Settings(), s.goos, "")
	_, err := exec.LookPath(name)
	return err == nil
}

// Command builds the speech command line for goos.
func Command(settings Settings, goos, text string) (string, []string) {
	settings = clamp(settings)
	wpm := strconv.Itoa(int(baseWordsPerMinute * settings.Rate))

	name := settings.Command
	if name == "" {
		name = "espeak-ng"
		if goos == "darwin" {
			name = "say"
		}
	}

	if name == "say" {
		args := []string{"-r", wpm}
		if settings.Voice != "" {
			args = append(args, "-v", settings.Voice)
		}
		return name, append(args, fmt.Sprintf("[[volm %.2f]] %s", settings.Volume, text))
	}

	voice := settings.Voice
	if voice == "" {
		voice = "cmn"
	}
	amplitude := strconv.Itoa(int(settings.Volume * 100))
	return name, []string{"-v", voice, "-s", wpm, "-a", amplitude, text}
}

func clamp(s Settings) Settings {
	s.Rate = min(max(s.Rate, MinRate), MaxRate)
	s.Volume = min(max(s.Volume, MinVolume), MaxVolume)
	return s
}
