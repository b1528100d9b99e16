package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"imagen", "imagen-4.0-generate-001"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"word":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"kind":  map[string]any{"type": "string", "enum": []any{"definition", "sentence", "concept"}},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"word", "options"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["word"].Type != genai.TypeString {
		t.Fatalf("expected STRING for word, got %s", schema.Properties["word"].Type)
	}
	if schema.Properties["count"].Type != genai.TypeInteger {
		t.Fatalf("expected INTEGER for count, got %s", schema.Properties["count"].Type)
	}
	if len(schema.Properties["kind"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["kind"].Enum))
	}
	if schema.Properties["options"].Items.Type != genai.TypeString {
		t.Fatalf("expected STRING for options items, got %s", schema.Properties["options"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiContentsImagesFirst(t *testing.T) {
	msgs := UserMessage("describe", Image{MIMEType: "image/png", Data: []byte{1, 2, 3}})

	contents := buildGeminiContents(msgs)

	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/png" {
		t.Fatalf("expected inline png first, got %+v", parts[0])
	}
	if parts[1].Text != "describe" {
		t.Fatalf("expected text last, got %q", parts[1].Text)
	}
	if contents[0].Role != "user" {
		t.Fatalf("expected user role, got %q", contents[0].Role)
	}
}
