package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
// Responses queued for a purpose are served first to requests carrying
// that purpose, so concurrent callers get deterministic answers.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	byPurpose map[string][]MockResponse
	Calls     []Request
	Purposes  []string
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	purpose := PurposeFrom(ctx)
	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, purpose)

	var resp MockResponse
	switch q := m.byPurpose[purpose]; {
	case len(q) > 0:
		resp = q[0]
		m.byPurpose[purpose] = q[1:]
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	default:
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddPurposeResponse queues a response served only to requests tagged
// with purpose.
func (m *MockProvider) AddPurposeResponse(purpose string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byPurpose == nil {
		m.byPurpose = make(map[string][]MockResponse)
	}
	m.byPurpose[purpose] = append(m.byPurpose[purpose], resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockImage is a canned result for MockImageGenerator.
type MockImage struct {
	Image Image
	Err   error
}

// MockImageGenerator is a deterministic ImageGenerator for testing.
type MockImageGenerator struct {
	mu      sync.Mutex
	images  []MockImage
	prompts []string
}

// NewMockImageGenerator creates a MockImageGenerator with canned results.
func NewMockImageGenerator(images ...MockImage) *MockImageGenerator {
	return &MockImageGenerator{images: images}
}

// GenerateImage returns the next canned image, or ErrNoImage when the
// queue is empty. It honors context cancellation.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, req.Prompt)
	if len(m.images) == 0 {
		return nil, ErrNoImage
	}
	img := m.images[0]
	m.images = m.images[1:]
	if img.Err != nil {
		return nil, img.Err
	}
	return &ImageResponse{Image: img.Image, Model: "mock"}, nil
}

// ImageModelID returns "mock".
func (m *MockImageGenerator) ImageModelID() string {
	return "mock"
}

// Prompts returns the prompts received so far.
func (m *MockImageGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
