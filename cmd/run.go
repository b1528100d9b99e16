package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/app"
	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/gallery"
	"github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/logging"
	"github.com/abhisek/cihui/internal/overrides"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/selfupdate"
	"github.com/abhisek/cihui/internal/source"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/tts"
)

// errNoAI is returned by commands that need a configured provider.
var errNoAI = errors.New("AI provider not configured (set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY)")

// env is everything a command needs, opened from config.
type env struct {
	cfg     *config.Config
	dataDir string
	log     *logrus.Logger

	store     *store.Store
	history   *history.Store
	overrides *overrides.Store

	provider llm.Provider
	gen      *contentgen.Generator
	pipeline *analysis.Pipeline
	importer *gallery.Importer

	closers []io.Closer
}

// openEnv loads config and opens the store. When tui is set the log goes
// to a file in the data directory, otherwise to stderr. AI services are
// opened separately by openAI.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dataDir, err := cfg.ResolveDataDir(store.DefaultDataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	e := &env{cfg: cfg, dataDir: dataDir}

	if tui {
		logger, closer, err := logging.NewFile(cfg.Log, dataDir)
		if err != nil {
			return nil, err
		}
		e.log = logger
		e.closers = append(e.closers, closer)
	} else {
		logger, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return nil, err
		}
		e.log = logger
	}

	dbPath, err := resolveDBPath(cmd, cfg, dataDir)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st)

	if e.history, err = history.Load(ctx, st.KV(), e.log); err != nil {
		e.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}
	if e.overrides, err = overrides.Load(ctx, st.KV(), e.log); err != nil {
		e.Close()
		return nil, fmt.Errorf("load custom images: %w", err)
	}

	return e, nil
}

// openAI builds the provider and the services on top of it. A missing
// provider is returned and leaves the AI services nil.
func (e *env) openAI(ctx context.Context) error {
	llmCfg := e.cfg.LLMProviderConfig(os.Getenv)
	provider, err := llm.NewProvider(ctx, llmCfg, e.store.EventRepo(), e.log)
	if err != nil {
		e.log.WithError(err).Warn("LLM provider not configured, AI features unavailable")
		return err
	}
	e.provider = provider

	images, err := llm.NewImageGenerator(ctx, llmCfg, e.store.EventRepo(), e.log)
	if err != nil {
		e.log.WithError(err).Info("illustrations unavailable")
		images = nil
	}

	e.gen = contentgen.New(provider, images, e.cfg.ContentConfig())
	e.pipeline = analysis.New(e.gen, e.overrides, e.history, quiz.NewRand(e.cfg.Quiz.Seed), e.log)
	e.importer = gallery.NewImporter(e.gen, e.overrides, e.cfg.Image.Concurrency, e.log)
	return nil
}

// requireAI opens the AI services, failing when no provider is configured.
func (e *env) requireAI(ctx context.Context) error {
	if e.pipeline != nil {
		return nil
	}
	if err := e.openAI(ctx); err != nil {
		return fmt.Errorf("%w: %v", errNoAI, err)
	}
	return nil
}

// Close releases the store and the log file.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}

// deps builds the shared screen dependencies.
func (e *env) deps() *screen.Deps {
	d := &screen.Deps{
		Overrides:   e.overrides,
		History:     e.history,
		Fetcher:     source.NewFetcher(nil),
		Speaker:     tts.New(e.cfg.TTS, e.log),
		Clipboard:   screen.SystemClipboard,
		DataDir:     e.dataDir,
		Style:       e.cfg.ImageStyle(),
		AutoAdvance: e.cfg.Quiz.AutoAdvance,
		RNG:         quiz.NewRand(e.cfg.Quiz.Seed),
		Log:         e.log,
	}
	if e.pipeline != nil {
		d.Analyzer = e.pipeline
		d.Importer = e.importer
		d.Status = e.provider.ModelID()
	}
	if e.gen != nil && e.gen.CanIllustrate() {
		d.Illustrator = e.gen
	}
	return d
}

// latestVersion asks for a newer release, giving up quickly. Development
// builds never check.
func latestVersion(ctx context.Context, log logrus.FieldLogger) string {
	if version == devVersion {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := selfupdate.NewChecker(selfupdate.WithTimeout(3*time.Second)).Check(ctx, &selfupdate.CheckInput{Version: version})
	if err != nil {
		log.WithError(err).Debug("update check failed")
		return ""
	}
	if !res.UpdateAvailable {
		return ""
	}
	return res.LatestVersion
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.openAI(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	}

	deps := e.deps()
	deps.LatestVersion = latestVersion(ctx, e.log)
	defer deps.Speaker.Stop()

	return app.Run(deps)
}
