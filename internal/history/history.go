// Package history keeps the recent-input list: newest first, deduplicated
// by content and capped at MaxItems.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Key is the storage namespace for the history list.
const Key = "vocabularyHistory"

// MaxItems caps the list length.
const MaxItems = 50

const (
	defaultNameRunes = 20
	legacyNameRunes  = 30
)

// ErrIndexOutOfRange is returned for a position past the end of the list.
var ErrIndexOutOfRange = errors.New("history index out of range")

// Store is the in-memory history list backed by a persistence Backend.
// Every mutation is written through immediately.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	log     logrus.FieldLogger
	items   []vocab.HistoryItem
}

// Load reads the history from backend. Corrupt data yields an empty list.
// The legacy format (a plain array of strings) is migrated and saved.
func Load(ctx context.Context, backend store.Backend, log logrus.FieldLogger) (*Store, error) {
	s := &Store{backend: backend, log: log.WithField("namespace", Key)}

	raw, ok, err := backend.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return s, nil
	}

	items, migrated, err := decode(raw)
	if err != nil {
		s.log.WithError(err).Warn("discarding unreadable history")
		return s, nil
	}
	s.items = items

	if migrated {
		s.log.WithField("items", len(items)).Info("migrated legacy history")
		if err := s.save(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func decode(raw []byte) (items []vocab.HistoryItem, migrated bool, err error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false, err
	}
	if len(elems) == 0 {
		return nil, false, nil
	}

	var first string
	if json.Unmarshal(elems[0], &first) == nil {
		var legacy []string
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, false, err
		}
		return lo.Map(legacy, func(content string, _ int) vocab.HistoryItem {
			return vocab.HistoryItem{Name: Truncate(content, legacyNameRunes), Content: content}
		}), true, nil
	}

	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, false, nil
}

// Items returns a copy of the list, newest first.
func (s *Store) Items() []vocab.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]vocab.HistoryItem(nil), s.items...)
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Add prepends item. It reports false without writing when the trimmed
// content is empty or already present. An empty name gets DefaultName.
func (s *Store) Add(ctx context.Context, item vocab.HistoryItem) (bool, error) {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.items, func(it vocab.HistoryItem) bool { return it.Content == content }) {
		return false, nil
	}

	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = DefaultName(content)
	}
	s.items = append([]vocab.HistoryItem{{Name: name, Content: content}}, s.items...)
	if len(s.items) > MaxItems {
		s.items = s.items[:MaxItems]
	}
	return true, s.save(ctx)
}

// Delete removes the item at index and returns it.
func (s *Store) Delete(ctx context.Context, index int) (vocab.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return vocab.HistoryItem{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	removed := s.items[index]
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	return removed, s.save(ctx)
}

// Rename changes the label of the item at index.
func (s *Store) Rename(ctx context.Context, index int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(s.items[index].Content)
	}
	s.items[index].Name = name
	return s.save(ctx)
}

// Clear empties the list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []vocab.HistoryItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.backend.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// DefaultName labels content that the user did not name.
func DefaultName(content string) string {
	return Truncate(strings.TrimSpace(content), defaultNameRunes)
}

// Truncate keeps the first n runes of s and appends "..." when it cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
