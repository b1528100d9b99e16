// Package overrides holds locally supplied image and sentence pairs per
// word, namespaced by the vocabulary input they were added for, and the
// rules that let them take precedence over generated content.
package overrides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/sirupsen/logrus"
)

// Key is the storage namespace for all overrides.
const Key = "customVocabularyContent"

// ErrEmptyVocabKey is returned when the vocabulary key is blank.
var ErrEmptyVocabKey = errors.New("vocabulary key is empty")

// Store maps vocabulary key to word to override, written through to a
// persistence Backend on every mutation.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	log     logrus.FieldLogger
	all     map[string]vocab.WordContent
}

// Load reads overrides from backend. Corrupt data yields an empty mapping.
func Load(ctx context.Context, backend store.Backend, log logrus.FieldLogger) (*Store, error) {
	s := &Store{
		backend: backend,
		log:     log.WithField("namespace", Key),
		all:     make(map[string]vocab.WordContent),
	}

	raw, ok, err := backend.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	if !ok {
		return s, nil
	}
	var all map[string]vocab.WordContent
	if err := json.Unmarshal(raw, &all); err != nil {
		s.log.WithError(err).Warn("discarding unreadable overrides")
		return s, nil
	}
	for k, v := range all {
		if v != nil {
			s.all[k] = v
		}
	}
	return s, nil
}

// ForVocab returns a copy of the overrides for the vocabulary key.
func (s *Store) ForVocab(vocabKey string) vocab.WordContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(vocab.WordContent)
	maps.Copy(out, s.all[strings.TrimSpace(vocabKey)])
	return out
}

// VocabKeys returns every key that has overrides.
func (s *Store) VocabKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.all))
	for k := range s.all {
		keys = append(keys, k)
	}
	return keys
}

// Replace sets the whole word mapping for vocabKey.
func (s *Store) Replace(ctx context.Context, vocabKey string, content vocab.WordContent) error {
	key := strings.TrimSpace(vocabKey)
	if key == "" {
		return ErrEmptyVocabKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all[key] = maps.Clone(content)
	return s.save(ctx)
}

// Put sets a single word's override within vocabKey.
func (s *Store) Put(ctx context.Context, vocabKey, word string, c vocab.CustomContent) error {
	key := strings.TrimSpace(vocabKey)
	if key == "" {
		return ErrEmptyVocabKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wc := maps.Clone(s.all[key])
	if wc == nil {
		wc = make(vocab.WordContent)
	}
	wc[word] = c
	s.all[key] = wc
	return s.save(ctx)
}

// DeleteWord removes one word's override within vocabKey.
func (s *Store) DeleteWord(ctx context.Context, vocabKey, word string) error {
	key := strings.TrimSpace(vocabKey)
	if key == "" {
		return ErrEmptyVocabKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wc, ok := s.all[key]
	if !ok {
		return nil
	}
	wc = maps.Clone(wc)
	delete(wc, word)
	s.all[key] = wc
	return s.save(ctx)
}

// DeleteVocab removes the whole mapping for vocabKey.
func (s *Store) DeleteVocab(ctx context.Context, vocabKey string) error {
	key := strings.TrimSpace(vocabKey)
	if key == "" {
		return ErrEmptyVocabKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.all[key]; !ok {
		return nil
	}
	delete(s.all, key)
	return s.save(ctx)
}

// Clear drops every override and removes the namespace from storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = make(map[string]vocab.WordContent)
	if err := s.backend.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear overrides: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context) error {
	data, err := json.Marshal(s.all)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}
	if err := s.backend.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	return nil
}
