package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// Provider is the core abstraction for text generation.
// Consumers call Generate with a Request and receive JSON or text.
type Provider interface {
	// Generate sends a prompt to the model. When the request's Schema is
	// set the provider uses its native structured output and the response
	// Content is validated JSON; otherwise Content is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// ImageGenerator produces illustrations from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
	ImageModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Every call here is single-turn, so
	// this holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil the
	// response is free text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves it to the provider default.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string

	// Images are sent ahead of the text content.
	Images []Image
}

// Image is inline binary image data.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a data: URI.
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage builds a single-turn request body.
func UserMessage(content string, images ...Image) []Message {
	return []Message{{Role: RoleUser, Content: content, Images: images}}
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "learning-cards".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the validated JSON object when a Schema was provided,
	// otherwise the raw text.
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns Content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ImageRequest describes one illustration.
type ImageRequest struct {
	Prompt      string
	AspectRatio string // e.g. "1:1"
	MIMEType    string // e.g. "image/jpeg"
}

// ImageResponse carries the generated image.
type ImageResponse struct {
	Image Image
	Model string
}
