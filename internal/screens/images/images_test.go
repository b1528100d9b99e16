package images

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/gallery"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

type fakeGen struct{}

func (fakeGen) MatchSentences(_ context.Context, _ []string, _ string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (fakeGen) SentenceForImage(_ context.Context, word string, _ llm.Image) (string, error) {
	return "大家都很" + word + "。", nil
}

func newDeps(t *testing.T, withImporter bool) *screen.Deps {
	t.Helper()
	logger, _ := test.NewNullLogger()
	ov, err := overrides.Load(t.Context(), store.NewMemoryBackend(), logger)
	if err != nil {
		t.Fatal(err)
	}
	deps := &screen.Deps{Overrides: ov, Log: logger}
	if withImporter {
		deps.Importer = gallery.NewImporter(fakeGen{}, ov, 2, logger)
	}
	return deps
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// drain runs cmd and feeds its messages back until the chain ends.
func drain(s *ImagesScreen, cmd tea.Cmd) {
	for cmd != nil {
		_, cmd = s.Update(cmd())
	}
}

func TestImages_NeedsInput(t *testing.T) {
	s := New(newDeps(t, true), "")
	if !strings.Contains(s.View(100, 30), analysis.MsgImagesNeedInput) {
		t.Error("empty key list should ask for input first")
	}
}

func TestImages_ImportDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"忙碌.png", "安靜.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	deps := newDeps(t, true)
	s := New(deps, "忙碌 安靜")

	s.Update(key("a"))
	if s.mode != modePaths || !s.WantsEscape() {
		t.Fatalf("mode = %v", s.mode)
	}
	s.input.SetValue(dir)
	s.Update(key("enter"))
	if s.mode != modeSentences || len(s.paths) != 2 {
		t.Fatalf("mode %v paths %v", s.mode, s.paths)
	}

	_, cmd := s.Update(key("enter"))
	if s.mode != modeImporting || cmd == nil {
		t.Fatalf("import did not start, mode %v", s.mode)
	}
	drain(s, cmd)

	if s.importing {
		t.Fatal("import still running")
	}
	for _, it := range s.Items() {
		if it.Status != gallery.StatusDone {
			t.Errorf("%s: status %v (%v)", it.Name, it.Status, it.Err)
		}
	}
	if got := s.Words(); len(got) != 2 {
		t.Errorf("words = %v", got)
	}
	content := deps.Overrides.ForVocab("忙碌 安靜")
	if content["忙碌"].Sentence != "大家都很忙碌。" {
		t.Errorf("content = %+v", content)
	}

	s.Update(key("enter"))
	if s.mode != modeWords {
		t.Errorf("mode after import = %v", s.mode)
	}
}

func TestImages_DeleteWordAndVocab(t *testing.T) {
	deps := newDeps(t, false)
	ctx := t.Context()
	for _, w := range []string{"安靜", "忙碌"} {
		if err := deps.Overrides.Put(ctx, "key", w, vocab.CustomContent{ImageURL: "data:image/png;base64,AA==", Sentence: w}); err != nil {
			t.Fatal(err)
		}
	}

	s := New(deps, "")
	if len(s.keys) != 1 {
		t.Fatalf("keys = %v", s.keys)
	}
	s.Update(key("enter"))
	if s.mode != modeWords || len(s.Words()) != 2 {
		t.Fatalf("mode %v words %v", s.mode, s.Words())
	}

	s.Update(key("d"))
	if len(s.Words()) != 1 {
		t.Fatalf("words after delete = %v", s.Words())
	}

	s.Update(key("x"))
	if len(s.Words()) != 0 || len(deps.Overrides.VocabKeys()) != 0 {
		t.Errorf("vocab not removed: %v", deps.Overrides.VocabKeys())
	}

	// Esc goes back to the key list when the key was picked here.
	if !s.WantsEscape() {
		t.Fatal("expected to handle esc")
	}
	s.Update(key("esc"))
	if s.mode != modeKeys {
		t.Errorf("mode = %v", s.mode)
	}
}

func TestImages_NoImporter(t *testing.T) {
	s := New(newDeps(t, false), "key")
	s.Update(key("a"))
	if s.mode != modeWords || s.Status() != MsgNoImporter {
		t.Errorf("mode %v status %q", s.mode, s.Status())
	}
	if s.WantsEscape() {
		t.Error("fixed key screen should let esc pop")
	}
}
