// Package settings adjusts speech and illustration preferences for the
// running session.
package settings

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/tts"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// SampleText is read aloud by the preview row.
const SampleText = "你好，我們一起來學習詞彙吧！"

// rateStep and volumeStep are the increments of one arrow press.
const (
	rateStep   = 0.1
	volumeStep = 0.1
)

// Rows, in display order.
const (
	RowVoice = iota
	RowRate
	RowVolume
	RowStyle
	RowAutoAdvance
	RowPreview
	rowCount
)

// SettingsScreen edits deps in place.
type SettingsScreen struct {
	deps    *screen.Deps
	cursor  int
	editing bool
	voice   components.TextInput
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)
var _ screen.EscapeHandler = (*SettingsScreen)(nil)

// New creates the settings screen.
func New(deps *screen.Deps) *SettingsScreen {
	return &SettingsScreen{deps: deps}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "設定"
}

// WantsEscape reports whether Esc cancels the voice prompt.
func (s *SettingsScreen) WantsEscape() bool {
	return s.editing
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "確認"},
			{Key: "Esc", Description: "取消"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選擇"},
		{Key: "←→", Description: "調整"},
		{Key: "Enter", Description: "編輯/試聽"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *SettingsScreen) speech() (tts.Settings, bool) {
	if s.deps.Speaker == nil {
		return tts.Settings{}, false
	}
	return s.deps.Speaker.Settings(), true
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if s.editing {
		if ok {
			switch kmsg.String() {
			case "esc":
				s.editing = false
				return s, nil
			case "enter":
				s.editing = false
				if cur, ok := s.speech(); ok {
					s.deps.Speaker.Configure(strings.TrimSpace(s.voice.Value()), cur.Rate, cur.Volume)
				}
				return s, nil
			}
		}
		var cmd tea.Cmd
		s.voice, cmd = s.voice.Update(msg)
		return s, cmd
	}
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		s.cursor = (s.cursor + rowCount - 1) % rowCount
	case "down", "j":
		s.cursor = (s.cursor + 1) % rowCount
	case "left", "h":
		s.adjust(-1)
	case "right", "l":
		s.adjust(1)
	case "enter", "space":
		switch s.cursor {
		case RowVoice:
			if cur, ok := s.speech(); ok {
				s.editing = true
				s.voice = components.NewTextInput("語音名稱（留空使用預設）", "Mei-Jia", 40)
				s.voice.SetValue(cur.Voice)
				return s, s.voice.Init()
			}
		case RowPreview:
			s.deps.Speak(SampleText)
		default:
			s.adjust(1)
		}
	}
	return s, nil
}

func (s *SettingsScreen) adjust(dir int) {
	switch s.cursor {
	case RowRate, RowVolume:
		cur, ok := s.speech()
		if !ok {
			return
		}
		if s.cursor == RowRate {
			cur.Rate = round(cur.Rate + float64(dir)*rateStep)
		} else {
			cur.Volume = round(cur.Volume + float64(dir)*volumeStep)
		}
		s.deps.Speaker.Configure(cur.Voice, cur.Rate, cur.Volume)
	case RowStyle:
		i := slices.Index(vocab.ImageStyles, s.deps.Style)
		n := len(vocab.ImageStyles)
		s.deps.Style = vocab.ImageStyles[((i+dir)%n+n)%n]
	case RowAutoAdvance:
		s.deps.AutoAdvance = !s.deps.AutoAdvance
	}
}

func round(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *SettingsScreen) View(width, height int) string {
	cur, hasSpeech := s.speech()
	na := "未啟用"

	voice, rate, volume := na, na, na
	if hasSpeech {
		voice = cur.Voice
		if voice == "" {
			voice = "預設"
		}
		rate = fmt.Sprintf("%.1fx", cur.Rate)
		volume = fmt.Sprintf("%.0f%%", cur.Volume*100)
	}
	auto := "關閉"
	if s.deps.AutoAdvance {
		auto = "開啟"
	}

	rows := []struct{ label, value string }{
		RowVoice:       {"語音", voice},
		RowRate:        {"語速", rate},
		RowVolume:      {"音量", volume},
		RowStyle:       {"圖片風格", string(s.deps.Style)},
		RowAutoAdvance: {"答對自動下一題", auto},
		RowPreview:     {"試聽", "▶"},
	}

	var lines []string
	for i, r := range rows {
		label := lipgloss.NewStyle().Width(16).Render(r.label)
		line := fmt.Sprintf("%s  ‹ %s ›", label, r.value)
		if i == RowPreview {
			line = label + "  " + r.value
		}
		if i == s.cursor {
			lines = append(lines, theme.Selected.Render("▸ "+line))
		} else {
			lines = append(lines, theme.Unselected.Render("  "+line))
		}
	}

	sections := []string{theme.Title.Render("設定"), "", strings.Join(lines, "\n")}
	if s.editing {
		sections = append(sections, "", s.voice.View())
	}
	if !hasSpeech {
		sections = append(sections, "", theme.Hint.Render("找不到語音程式，朗讀功能已停用"))
	}

	content := components.ArcadeCard(lipgloss.JoinVertical(lipgloss.Left, sections...), components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
