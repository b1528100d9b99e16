package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	got := c.Cost(1_000_000, 1_000_000)
	if math.Abs(got-2.8) > 1e-9 {
		t.Fatalf("expected 2.8 USD, got %f", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}

func TestImageCost(t *testing.T) {
	if ImageCost("imagen-4.0-generate-001") != 0.04 {
		t.Fatalf("unexpected imagen price %f", ImageCost("imagen-4.0-generate-001"))
	}
	if ImageCost("mock") != 0 {
		t.Fatal("expected zero for unknown image model")
	}
}
