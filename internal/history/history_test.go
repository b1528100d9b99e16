package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func load(t *testing.T, b store.Backend) *Store {
	t.Helper()
	s, err := Load(t.Context(), b, quietLogger())
	require.NoError(t, err)
	return s
}

func stored(t *testing.T, b store.Backend) []vocab.HistoryItem {
	t.Helper()
	raw, ok, err := b.Get(t.Context(), Key)
	require.NoError(t, err)
	require.True(t, ok, "history not persisted")
	var items []vocab.HistoryItem
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestAdd_PrependsAndPersists(t *testing.T) {
	b := store.NewMemoryBackend()
	s := load(t, b)

	added, err := s.Add(t.Context(), vocab.HistoryItem{Name: "第一課", Content: "  如釋重負,得不償失  "})
	require.NoError(t, err)
	assert.True(t, added)
	_, err = s.Add(t.Context(), vocab.HistoryItem{Content: "忙碌"})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "忙碌", items[0].Content)
	assert.Equal(t, "忙碌", items[0].Name, "default name")
	assert.Equal(t, "如釋重負,得不償失", items[1].Content, "content trimmed")
	assert.Equal(t, items, stored(t, b))
}

func TestAdd_IgnoresEmptyAndDuplicates(t *testing.T) {
	s := load(t, store.NewMemoryBackend())
	ctx := t.Context()

	added, err := s.Add(ctx, vocab.HistoryItem{Content: "   \n "})
	require.NoError(t, err)
	assert.False(t, added)

	_, _ = s.Add(ctx, vocab.HistoryItem{Content: "忙碌"})
	added, err = s.Add(ctx, vocab.HistoryItem{Name: "other", Content: " 忙碌 "})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, s.Len())
}

func TestAdd_CapsAtMax(t *testing.T) {
	s := load(t, store.NewMemoryBackend())
	for i := range MaxItems + 15 {
		_, err := s.Add(t.Context(), vocab.HistoryItem{Content: fmt.Sprintf("內容 %d", i)})
		require.NoError(t, err)
		assert.LessOrEqual(t, s.Len(), MaxItems)
	}
	items := s.Items()
	assert.Equal(t, fmt.Sprintf("內容 %d", MaxItems+14), items[0].Content)
	assert.Equal(t, "內容 15", items[MaxItems-1].Content, "oldest dropped")
}

func TestDeleteRenameClear(t *testing.T) {
	b := store.NewMemoryBackend()
	s := load(t, b)
	ctx := t.Context()
	for _, c := range []string{"a", "b", "c"} {
		_, _ = s.Add(ctx, vocab.HistoryItem{Content: c})
	}

	removed, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Content)
	assert.Equal(t, []string{"c", "a"}, contents(s.Items()))

	_, err = s.Delete(ctx, 5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	require.NoError(t, s.Rename(ctx, 0, "新名稱"))
	assert.Equal(t, "新名稱", s.Items()[0].Name)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, stored(t, b))
}

func TestLoad_MigratesLegacyStrings(t *testing.T) {
	b := store.NewMemoryBackend()
	long := strings.Repeat("字", 35)
	raw, _ := json.Marshal([]string{"短內容", long})
	require.NoError(t, b.Set(t.Context(), Key, raw))

	s := load(t, b)
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, vocab.HistoryItem{Name: "短內容", Content: "短內容"}, items[0])
	assert.Equal(t, strings.Repeat("字", 30)+"...", items[1].Name)
	assert.Equal(t, long, items[1].Content)
	assert.Equal(t, items, stored(t, b), "migrated shape saved immediately")
}

func TestLoad_CorruptDefaultsToEmpty(t *testing.T) {
	for _, raw := range []string{`{not json`, `{"a":1}`, `42`} {
		b := store.NewMemoryBackend()
		require.NoError(t, b.Set(t.Context(), Key, []byte(raw)))
		s := load(t, b)
		assert.Equal(t, 0, s.Len(), "raw %s", raw)
	}
}

type failingBackend struct{ store.Backend }

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}

func TestLoad_BackendError(t *testing.T) {
	_, err := Load(t.Context(), failingBackend{}, quietLogger())
	assert.Error(t, err)
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "忙碌", DefaultName(" 忙碌 "))
	long := strings.Repeat("詞", 25)
	assert.Equal(t, strings.Repeat("詞", 20)+"...", DefaultName(long))
}

func contents(items []vocab.HistoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}
