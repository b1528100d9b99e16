package settings

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/tts"
	"github.com/abhisek/cihui/internal/vocab"
)

func newScreen(t *testing.T) (*SettingsScreen, *screen.Deps, *[]string) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	spoken := &[]string{}
	run := func(_ context.Context, _ string, args ...string) error {
		*spoken = append(*spoken, args[len(args)-1])
		return nil
	}
	deps := &screen.Deps{
		Speaker: tts.NewWithRunner(tts.DefaultSettings(), "linux", run, logger),
		Style:   vocab.StylePictureBook,
		Log:     logger,
	}
	return New(deps), deps, spoken
}

func key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

func moveTo(s *SettingsScreen, row int) {
	for s.cursor != row {
		s.Update(key("down"))
	}
}

func TestSettings_RateAndVolume(t *testing.T) {
	s, deps, _ := newScreen(t)

	moveTo(s, RowRate)
	s.Update(key("right"))
	s.Update(key("right"))
	assert.InDelta(t, 1.2, deps.Speaker.Settings().Rate, 1e-9)

	moveTo(s, RowVolume)
	s.Update(key("right"))
	assert.InDelta(t, tts.MaxVolume, deps.Speaker.Settings().Volume, 1e-9, "volume is clamped")
	s.Update(key("left"))
	assert.InDelta(t, 0.9, deps.Speaker.Settings().Volume, 1e-9)
}

func TestSettings_StyleCycles(t *testing.T) {
	s, deps, _ := newScreen(t)
	moveTo(s, RowStyle)

	s.Update(key("right"))
	assert.Equal(t, vocab.StyleGhibli, deps.Style)
	s.Update(key("left"))
	s.Update(key("left"))
	assert.Equal(t, vocab.ImageStyles[len(vocab.ImageStyles)-1], deps.Style)
}

func TestSettings_AutoAdvanceToggle(t *testing.T) {
	s, deps, _ := newScreen(t)
	moveTo(s, RowAutoAdvance)
	s.Update(key("enter"))
	assert.True(t, deps.AutoAdvance)
	s.Update(key("enter"))
	assert.False(t, deps.AutoAdvance)
}

func TestSettings_EditVoice(t *testing.T) {
	s, deps, _ := newScreen(t)

	s.Update(key("enter"))
	require.True(t, s.WantsEscape())
	s.voice.SetValue("Mei-Jia")
	s.Update(key("enter"))

	assert.False(t, s.WantsEscape())
	assert.Equal(t, "Mei-Jia", deps.Speaker.Settings().Voice)
	assert.Contains(t, s.View(100, 30), "Mei-Jia")
}

func TestSettings_Preview(t *testing.T) {
	s, deps, spoken := newScreen(t)
	moveTo(s, RowPreview)
	s.Update(key("enter"))
	deps.Speaker.Wait()
	assert.Equal(t, []string{SampleText}, *spoken)
}

func TestSettings_NoSpeaker(t *testing.T) {
	s := New(&screen.Deps{Style: vocab.StylePictureBook})
	s.Update(key("enter"))
	assert.False(t, s.WantsEscape())
	assert.True(t, strings.Contains(s.View(100, 30), "未啟用"))
}
