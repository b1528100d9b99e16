package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/cihui/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// event and writes a log line for it.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       logrus.FieldLogger
}

// WithLogging wraps a Provider with event logging. repo may be nil.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log logrus.FieldLogger) Provider {
	return &LoggingProvider{inner: p, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		RequestID:   requestID(ctx),
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		Images:      countImages(req),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.record(ctx, data, err)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData, err error) {
	entry := l.log.WithFields(logrus.Fields{
		"purpose":    data.Purpose,
		"model":      data.Model,
		"request_id": data.RequestID,
		"latency_ms": data.LatencyMs,
	})
	if err != nil {
		entry.WithError(err).Warn("AI request failed")
	} else {
		entry.WithFields(logrus.Fields{
			"input_tokens":  data.InputTokens,
			"output_tokens": data.OutputTokens,
		}).Debug("AI request completed")
	}

	if l.eventRepo == nil {
		return
	}
	// A failed append never fails the request.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.WithError(logErr).Warn("failed to record AI request event")
	}
}

// LoggingImageGenerator records image generation calls like LoggingProvider.
type LoggingImageGenerator struct {
	inner     ImageGenerator
	provider  string
	eventRepo store.EventRepo
	log       logrus.FieldLogger
}

// WithImageLogging wraps an ImageGenerator with event logging. repo may be nil.
func WithImageLogging(g ImageGenerator, providerName string, repo store.EventRepo, log logrus.FieldLogger) ImageGenerator {
	return &LoggingImageGenerator{inner: g, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()
	resp, err := l.inner.GenerateImage(ctx, req)

	data := store.LLMRequestEventData{
		RequestID:   requestID(ctx),
		Provider:    l.provider,
		Model:       l.inner.ImageModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: req.Prompt,
	}
	if resp != nil {
		data.Images = 1
		data.ResponseBody = fmt.Sprintf("[%s, %d bytes]", resp.Image.MIMEType, len(resp.Image.Data))
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	(&LoggingProvider{provider: l.provider, eventRepo: l.eventRepo, log: l.log}).record(ctx, data, err)
	return resp, err
}

func (l *LoggingImageGenerator) ImageModelID() string {
	return l.inner.ImageModelID()
}

// requestID groups all requests made for one user action when the
// context carries a run id.
func requestID(ctx context.Context) string {
	if id := RunIDFrom(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func countImages(req Request) int {
	n := 0
	for _, m := range req.Messages {
		n += len(m.Images)
	}
	return n
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		for _, img := range m.Images {
			fmt.Fprintf(&b, "[image %s, %d bytes]\n", img.MIMEType, len(img.Data))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
