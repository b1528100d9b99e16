package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/cihui/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, retry and logging
// middleware. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

// NewImageGenerator creates the illustration backend. Only the Gemini
// provider can draw; other providers return ErrNoProvider.
func NewImageGenerator(ctx context.Context, cfg Config, eventRepo store.EventRepo, log logrus.FieldLogger) (ImageGenerator, error) {
	switch cfg.Provider {
	case ProviderGemini:
	case ProviderMock:
		return NewMockImageGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: image generation requires the gemini provider, have %q", ErrNoProvider, cfg.Provider)
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required for illustrations", ErrNoProvider)
	}

	gen, err := NewGeminiProvider(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("initializing image generator: %w", err)
	}
	return WithImageLogging(gen, cfg.Provider, eventRepo, log), nil
}

// TimeoutProvider bounds each Generate call.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so that each call is cancelled after d. A zero d
// returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
