package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/contentgen"
	historystore "github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/input"
	"github.com/abhisek/cihui/internal/screens/settings"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Run(context.Context, analysis.Request) (*vocab.Analysis, error) {
	return &vocab.Analysis{}, nil
}

func (nopAnalyzer) VoiceChars(context.Context, analysis.Request) (string, error) { return "", nil }

func (nopAnalyzer) VoiceWords(context.Context, analysis.Request, contentgen.WordVariant) (string, error) {
	return "", nil
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func TestHome_AnalyzePushesInput(t *testing.T) {
	h := New(&screen.Deps{Analyzer: nopAnalyzer{}})
	_, cmd := h.Update(enter())
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if _, ok := msg.Screen.(*input.InputScreen); !ok {
		t.Errorf("pushed %T", msg.Screen)
	}
}

func TestHome_NoAnalyzer(t *testing.T) {
	h := New(&screen.Deps{})
	if !h.menu.Items[itemAnalyze].Disabled {
		t.Error("analysis should be disabled without an analyzer")
	}
	if h.menu.Selected != itemSettings {
		t.Errorf("selected = %d, want first enabled item", h.menu.Selected)
	}
	if !strings.Contains(h.View(120, 40), "LLM API") {
		t.Error("missing provider warning")
	}

	_, cmd := h.Update(enter())
	if _, ok := cmd().(router.PushScreenMsg).Screen.(*settings.SettingsScreen); !ok {
		t.Error("settings not pushed")
	}
}

func TestHome_StatsAndMascot(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hist, err := historystore.Load(t.Context(), store.NewMemoryBackend(), logger)
	if err != nil {
		t.Fatal(err)
	}
	h := New(&screen.Deps{Analyzer: nopAnalyzer{}, History: hist})
	if h.mascot(0) != MascotIdle {
		t.Error("idle mascot expected")
	}

	if _, err := hist.Add(t.Context(), vocab.HistoryItem{Content: "忙碌"}); err != nil {
		t.Fatal(err)
	}
	inputs, _ := h.stats()
	if inputs != 1 || h.mascot(inputs) != MascotCelebrating {
		t.Errorf("inputs %d mascot %v", inputs, h.mascot(inputs))
	}
	if !strings.Contains(h.View(120, 40), "1 筆紀錄") {
		t.Error("stats bar missing count")
	}
}

func TestHome_UpdateNote(t *testing.T) {
	h := New(&screen.Deps{Analyzer: nopAnalyzer{}, LatestVersion: "v1.2.0"})
	if !strings.Contains(h.View(120, 40), "v1.2.0") {
		t.Error("update note missing")
	}
}
