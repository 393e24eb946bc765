package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"claude-haiku", &ModelCost{1, 5}},
		{"claude-sonnet", &ModelCost{3, 15}},
		{"claude-haiku-4-5-20251001", &ModelCost{1, 5}},
		{"gemini-flash", &ModelCost{0.1, 0.4}},
		{"gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"gpt-4o-2024-08-06", &ModelCost{2.5, 10}},
		{"google/gemini-2.0-flash-exp", &ModelCost{0.1, 0.4}},
		{"anthropic/claude-3-haiku", &ModelCost{0.25, 1.25}},
		{"meta-llama/llama-3-8b-instruct:free", &ModelCost{}},
		{" GPT-4.1-Mini ", &ModelCost{0.4, 1.6}},
		{"mock", &ModelCost{}},
		{"meta-llama/llama-3-8b", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := LookupCost(tt.model)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("LookupCost(%q) = %+v, want nil", tt.model, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("LookupCost(%q) = nil, want %+v", tt.model, *tt.want)
			}
			if *got != *tt.want {
				t.Fatalf("LookupCost(%q) = %+v, want %+v", tt.model, *got, *tt.want)
			}
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	// A review round: question, grading and weakness analysis on haiku.
	c := LookupCost("claude-haiku")
	if c == nil {
		t.Fatal("expected pricing for the default anthropic model")
	}
	got := c.Cost(3*400, 150+200+120)
	want := 1200*1.0/1_000_000 + 470*5.0/1_000_000
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("cost = %v, want %v", got, want)
	}
	if (ModelCost{}).Cost(1_000_000, 1_000_000) != 0 {
		t.Fatal("zero pricing should cost nothing")
	}
}

func TestDefaultModelsArePriced(t *testing.T) {
	cfg := DefaultConfig()
	for _, model := range []string{cfg.Anthropic.Model, cfg.OpenAI.Model, cfg.Gemini.Model, cfg.OpenRouter.Model} {
		if LookupCost(model) == nil {
			t.Errorf("no pricing for default model %q", model)
		}
	}
}
