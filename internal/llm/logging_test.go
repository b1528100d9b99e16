package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/cihui/internal/store"
)

type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	logger, _ := test.NewNullLogger()
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"words":["忙碌"]}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	p := WithLogging(mock, "gemini", repo, logger)

	ctx := WithRunID(WithPurpose(context.Background(), "extract-words"), "run-42")
	_, err := p.Generate(ctx, Request{
		Messages: UserMessage("忙碌", Image{MIMEType: "image/png", Data: []byte("x")}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != "extract-words" || ev.RequestID != "run-42" || ev.Provider != "gemini" {
		t.Fatalf("unexpected event identity %+v", ev)
	}
	if !ev.Success || ev.InputTokens != 12 || ev.OutputTokens != 4 || ev.Images != 1 {
		t.Fatalf("unexpected event data %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "[image image/png, 1 bytes]") {
		t.Fatalf("expected image placeholder in request body, got %q", ev.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailureAndSurvivesRepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	logger, hook := test.NewNullLogger()
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "gemini", repo, logger)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("expected failed event, got %+v", repo.events)
	}
	if repo.events[0].RequestID == "" {
		t.Fatal("expected a generated request id")
	}

	warns := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warns++
		}
	}
	if warns != 2 {
		t.Fatalf("expected request and repo warnings, got %d", warns)
	}
}

func TestLoggingImageGenerator(t *testing.T) {
	repo := &recordingRepo{}
	logger, _ := test.NewNullLogger()
	gen := WithImageLogging(NewMockImageGenerator(MockImage{Image: Image{MIMEType: "image/jpeg", Data: []byte("jpg")}}), "gemini", repo, logger)

	_, err := gen.GenerateImage(WithPurpose(context.Background(), "illustration"), ImageRequest{Prompt: "忙碌"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Images != 1 || repo.events[0].RequestBody != "忙碌" {
		t.Fatalf("unexpected event %+v", repo.events)
	}
}

func TestWithTimeout(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("expected zero timeout to return the provider unchanged")
	}
	if _, ok := WithTimeout(mock, 1).(*TimeoutProvider); !ok {
		t.Fatal("expected TimeoutProvider")
	}
}
