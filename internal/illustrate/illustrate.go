// Package illustrate fetches per-word illustrations, caches them for the
// life of one analysis and writes them to disk for display.
package illustrate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/vocab"
)

// ErrBadDataURI is returned for an override image that is not a base64
// data URI.
var ErrBadDataURI = errors.New("malformed data URI")

// Illustrator draws an image for a subject.
type Illustrator interface {
	Illustrate(ctx context.Context, subject string, style vocab.ImageStyle) (llm.Image, error)
}

// Result is a fetched illustration.
type Result struct {
	Word     string
	Style    vocab.ImageStyle
	Path     string
	Override bool
}

type cacheKey struct {
	word  string
	style vocab.ImageStyle
}

func (k cacheKey) String() string { return k.word + "\x00" + string(k.style) }

// flight is the shared context of one in-progress request. It is
// cancelled once every caller waiting on it has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Cache serves illustrations for one analysis. It is safe for concurrent
// use; concurrent requests for the same word and style share one call.
type Cache struct {
	gen Illustrator
	dir string
	log logrus.FieldLogger

	mu      sync.Mutex
	results map[cacheKey]Result
	flights map[cacheKey]*flight
	group   singleflight.Group
}

// NewCache creates a Cache writing files under dir.
func NewCache(gen Illustrator, dir string, log logrus.FieldLogger) *Cache {
	return &Cache{
		gen:     gen,
		dir:     dir,
		log:     log,
		results: make(map[cacheKey]Result),
		flights: make(map[cacheKey]*flight),
	}
}

// Dir returns the directory images are written to.
func (c *Cache) Dir() string { return c.dir }

// Cached returns a previously fetched result without fetching.
func (c *Cache) Cached(word string, style vocab.ImageStyle) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[cacheKey{word, style}]
	return r, ok
}

// Fetch returns the illustration for card. An override image wins and
// is never regenerated. Concurrent callers share one request, which is
// abandoned only when all of them have cancelled; an abandoned request
// caches nothing.
func (c *Cache) Fetch(ctx context.Context, card vocab.LearningCard, content vocab.WordContent, style vocab.ImageStyle) (Result, error) {
	key := cacheKey{card.Word, style}
	if r, ok := c.Cached(card.Word, style); ok {
		return r, nil
	}

	f := c.join(ctx, key)
	defer c.leave(key, f)

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.fetch(f.ctx, card, content, style)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		r := res.Val.(Result)
		c.mu.Lock()
		c.results[key] = r
		c.mu.Unlock()
		return r, nil
	}
}

// join registers a caller on the request for key, starting a new shared
// context when none is in progress. The shared context keeps the values
// of ctx but not its cancellation.
func (c *Cache) join(ctx context.Context, key cacheKey) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops a caller. The last one out cancels the shared context and
// forgets the request, so a later caller starts afresh instead of joining
// a doomed call.
func (c *Cache) leave(key cacheKey, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
		c.group.Forget(key.String())
	}
}

func (c *Cache) fetch(ctx context.Context, card vocab.LearningCard, content vocab.WordContent, style vocab.ImageStyle) (Result, error) {
	log := c.log.WithFields(logrus.Fields{"word": card.Word, "style": string(style)})
	r := Result{Word: card.Word, Style: style}

	var img llm.Image
	if uri, ok := overrides.ImageFor(card.Word, content); ok {
		decoded, err := DecodeDataURI(uri)
		if err != nil {
			return Result{}, err
		}
		img, r.Override = decoded, true
	} else {
		start := time.Now()
		generated, err := c.gen.Illustrate(ctx, overrides.IllustrationSubject(card, content), style)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Warn("illustration failed")
			}
			return Result{}, err
		}
		img = generated
		log.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("illustration generated")
	}

	path, err := c.write(card.Word, style, r.Override, img)
	if err != nil {
		return Result{}, err
	}
	r.Path = path
	return r, nil
}

func (c *Cache) write(word string, style vocab.ImageStyle, override bool, img llm.Image) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := safeName(word) + "-" + styleSlug(style)
	if override {
		name = safeName(word) + "-custom"
	}
	path := filepath.Join(c.dir, name+extension(img.MIMEType))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// DecodeDataURI parses a base64 data URI.
func DecodeDataURI(uri string) (llm.Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return llm.Image{}, ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return llm.Image{}, ErrBadDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return llm.Image{}, ErrBadDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return llm.Image{}, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return llm.Image{MIMEType: mimeType, Data: data}, nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".img"
}

func styleSlug(style vocab.ImageStyle) string {
	for i, s := range vocab.ImageStyles {
		if s == style {
			return fmt.Sprintf("s%d", i)
		}
	}
	return "s0"
}

func safeName(word string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, word)
}
