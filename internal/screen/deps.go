package screen

import (
	"context"
	"io"
	"math/rand/v2"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/gallery"
	"github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/illustrate"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/source"
	"github.com/abhisek/cihui/internal/tts"
	"github.com/abhisek/cihui/internal/vocab"
)

// Analyzer runs analyses and voice material generation.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) (*vocab.Analysis, error)
	VoiceChars(ctx context.Context, req analysis.Request) (string, error)
	VoiceWords(ctx context.Context, req analysis.Request, variant contentgen.WordVariant) (string, error)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard writes to the OS clipboard.
var SystemClipboard Clipboard = systemClipboard{}

// Deps are the services shared by every screen. Optional services may be
// nil; screens hide the features that need them.
type Deps struct {
	Analyzer  Analyzer
	Overrides *overrides.Store
	History   *history.Store

	// Illustrator draws card illustrations. Optional.
	Illustrator illustrate.Illustrator
	// Importer attaches imported images to words. Optional.
	Importer *gallery.Importer
	// Fetcher reads URL input. Optional.
	Fetcher *source.Fetcher
	// Speaker reads text aloud. Optional.
	Speaker *tts.Speaker

	Clipboard Clipboard

	// DataDir holds generated images and saved exports.
	DataDir string

	Style       vocab.ImageStyle
	AutoAdvance bool
	RNG         *rand.Rand
	Log         logrus.FieldLogger

	// Status is shown on the right of the header.
	Status string
	// LatestVersion is set when a newer release is available.
	LatestVersion string
}

// ImageDir is where illustrations are written.
func (d *Deps) ImageDir() string {
	return filepath.Join(d.DataDir, "images")
}

// ExportDir is where saved worksheets and materials go.
func (d *Deps) ExportDir() string {
	return filepath.Join(d.DataDir, "exports")
}

// Speak reads text aloud when a speaker is configured.
func (d *Deps) Speak(text string) {
	if d.Speaker != nil {
		d.Speaker.Speak(text)
	}
}

// Cue plays the answer feedback cue when a speaker is configured.
func (d *Deps) Cue(correct bool) {
	if d.Speaker != nil {
		d.Speaker.Cue(correct)
	}
}

// Logger returns Log, or a discarding logger when none was set.
func (d *Deps) Logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
