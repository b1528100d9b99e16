package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cihui.db")
	require.NoError(t, EnsureDir(path))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KV().Set(t.Context(), "k", []byte(`"v"`)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.KV().Get(t.Context(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"v"`, string(got))
}

func testBackend(t *testing.T, b Backend) {
	ctx := t.Context()

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "vocabularyHistory", []byte(`[1]`)))
	require.NoError(t, b.Set(ctx, "vocabularyHistory", []byte(`[1,2]`)))
	got, ok, err := b.Get(ctx, "vocabularyHistory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(got))

	require.NoError(t, b.Delete(ctx, "vocabularyHistory"))
	_, ok, err = b.Get(ctx, "vocabularyHistory")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Delete(ctx, "never-set"))
}

func TestKV_SQLite(t *testing.T) {
	testBackend(t, openTestStore(t).KV())
}

func TestKV_Memory(t *testing.T) {
	testBackend(t, NewMemoryBackend())
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	v := []byte("abc")
	require.NoError(t, b.Set(t.Context(), "k", v))
	v[0] = 'x'
	got, _, _ := b.Get(t.Context(), "k")
	assert.Equal(t, "abc", string(got))
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := t.Context()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "extract-words", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "quiz-definition", InputTokens: 200, OutputTokens: 80, LatencyMs: 500, Success: true},
		{Provider: "gemini", Model: "imagen-4.0-generate-001", Purpose: "illustration", Images: 1, LatencyMs: 900, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "quiz-definition", LatencyMs: 100, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Greater(t, all[0].ID, all[3].ID, "newest first")
	assert.Equal(t, "boom", all[0].ErrorMessage)
	assert.False(t, all[0].Success)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2, Purpose: "quiz-definition"})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	first := all[3]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "req", got.RequestBody)
	assert.Equal(t, "resp", got.ResponseBody)
	assert.False(t, got.Timestamp.IsZero())

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 3)
	for _, u := range byPurpose {
		if u.Purpose == "quiz-definition" {
			assert.Equal(t, 2, u.Calls)
			assert.Equal(t, 200, u.InputTokens)
			assert.Equal(t, int64(300), u.AvgLatencyMs)
		}
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.5-flash", byModel[0].Model)
	assert.Equal(t, 2, byModel[0].Calls, "failed calls excluded")
	assert.Equal(t, 1, byModel[1].Images)
}
