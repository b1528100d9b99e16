// Package gallery imports user images as per-word overrides, pairing
// each image with an example sentence.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/vocab"
)

// DefaultConcurrency bounds how many images are processed at once.
const DefaultConcurrency = 3

// Status messages shown per item.
const (
	MsgReading     = "讀取檔案中..."
	MsgMatched     = "使用配對的例句..."
	MsgGenerating  = "AI 圖片分析產生例句中..."
	MsgDone        = "完成！"
	MsgFailed      = "處理失敗"
	MsgNoSentence  = "AI 無法產生例句"
	MsgBadFilename = "無法從檔名取得詞彙"
)

var (
	// ErrNoSentence means the model returned an empty sentence.
	ErrNoSentence = errors.New(MsgNoSentence)

	// ErrNoWord means the file name has no usable word.
	ErrNoWord = errors.New(MsgBadFilename)

	// ErrNoVocab means there is no analyzed input to attach images to.
	ErrNoVocab = errors.New("no vocabulary key")
)

// Status is an item's processing state.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// File is one image to import.
type File struct {
	Name  string
	Image llm.Image
}

// WordOf returns the word a file name stands for: the base name without
// its extension.
func WordOf(name string) string {
	base := filepath.Base(name)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ImageExts are the extensions ExpandPaths picks up from directories.
var ImageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ExpandPaths replaces directories with the image files they contain and
// expands a leading "~/".
func ExpandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				arg = filepath.Join(home, arg[2:])
			}
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && slices.Contains(ImageExts, strings.ToLower(filepath.Ext(e.Name()))) {
				out = append(out, filepath.Join(arg, e.Name()))
			}
		}
	}
	return out, nil
}

// LoadFile reads path into a File.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read image: %w", err)
	}
	return File{Name: filepath.Base(path), Image: llm.Image{MIMEType: detectMIME(path, data), Data: data}}, nil
}

func detectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "image/") {
		return t
	}
	if t := http.DetectContentType(data); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/png"
}

// Item is the progress of one file.
type Item struct {
	Index    int
	Name     string
	Word     string
	Status   Status
	Message  string
	Sentence string
	Err      error
}

// Generator is the AI surface the importer needs.
type Generator interface {
	MatchSentences(ctx context.Context, words []string, text string) (map[string]string, error)
	SentenceForImage(ctx context.Context, word string, img llm.Image) (string, error)
}

// Importer stores images with sentences under a vocabulary key.
type Importer struct {
	gen         Generator
	overrides   *overrides.Store
	log         logrus.FieldLogger
	concurrency int
}

// NewImporter creates an Importer. concurrency <= 0 uses
// DefaultConcurrency.
func NewImporter(gen Generator, ov *overrides.Store, concurrency int, log logrus.FieldLogger) *Importer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Importer{gen: gen, overrides: ov, log: log, concurrency: concurrency}
}

// Import processes files and returns their final states in input order.
// sentences, if not blank, is free text the model pairs with the file
// words first; a failed pairing only costs those pre-matched sentences.
// A failed item never stops the others. progress, if set, receives each
// state change and may be called from several goroutines.
func (im *Importer) Import(ctx context.Context, vocabKey string, files []File, sentences string, progress func(Item)) ([]Item, error) {
	if strings.TrimSpace(vocabKey) == "" {
		return nil, ErrNoVocab
	}
	report := func(it Item) {
		if progress != nil {
			progress(it)
		}
	}

	items := lo.Map(files, func(f File, i int) Item {
		return Item{Index: i, Name: f.Name, Word: WordOf(f.Name)}
	})

	matched := map[string]string{}
	if strings.TrimSpace(sentences) != "" {
		words := lo.Uniq(lo.FilterMap(items, func(it Item, _ int) (string, bool) { return it.Word, it.Word != "" }))
		m, err := im.gen.MatchSentences(ctx, words, sentences)
		if err != nil {
			im.log.WithError(err).Warn("sentence matching failed")
		} else {
			matched = m
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, f := range files {
		g.Go(func() error {
			items[i] = im.process(gctx, vocabKey, f, items[i], matched[items[i].Word], report)
			report(items[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

func (im *Importer) process(ctx context.Context, vocabKey string, f File, it Item, sentence string, report func(Item)) Item {
	log := im.log.WithFields(logrus.Fields{"vocab": vocabKey, "word": it.Word})
	start := time.Now()

	fail := func(err error) Item {
		it.Status, it.Err = StatusError, err
		it.Message = MsgFailed
		if errors.Is(err, ErrNoSentence) || errors.Is(err, ErrNoWord) {
			it.Message = err.Error()
		}
		log.WithError(err).Warn("image import failed")
		return it
	}

	it.Status, it.Message = StatusProcessing, MsgReading
	report(it)
	if it.Word == "" {
		return fail(ErrNoWord)
	}

	if sentence != "" {
		it.Message = MsgMatched
		report(it)
	} else {
		it.Message = MsgGenerating
		report(it)
		s, err := im.gen.SentenceForImage(ctx, it.Word, f.Image)
		if err != nil {
			return fail(err)
		}
		sentence = strings.TrimSpace(s)
	}
	if sentence == "" {
		return fail(ErrNoSentence)
	}

	content := vocab.CustomContent{ImageURL: f.Image.DataURI(), Sentence: sentence}
	if err := im.overrides.Put(ctx, vocabKey, it.Word, content); err != nil {
		return fail(err)
	}

	it.Status, it.Message, it.Sentence = StatusDone, MsgDone, sentence
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("image imported")
	return it
}
