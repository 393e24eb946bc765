package llm

import (
	"regexp"
	"strings"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices a single request or an aggregate of requests.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns pricing for a model as recorded in llm_requests, or
// nil when the model is not in the catalog. Friendly names ("claude-haiku"),
// dated snapshots and OpenRouter ids ("google/gemini-2.0-flash-exp") resolve
// to their base model. OpenRouter ":free" variants cost nothing.
func LookupCost(model string) *ModelCost {
	id := strings.ToLower(strings.TrimSpace(model))
	if id == "" {
		return nil
	}
	if strings.HasSuffix(id, ":free") {
		return &ModelCost{}
	}
	for _, key := range costKeys(id) {
		if c, ok := modelCosts[key]; ok {
			return &c
		}
	}
	return nil
}

var snapshotSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|latest|exp)$`)

func costKeys(id string) []string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	id = resolveModel(resolveModel(id, anthropicModels), geminiModels)
	keys := []string{id}
	if base := snapshotSuffix.ReplaceAllString(id, ""); base != id {
		keys = append(keys, base)
	}
	return keys
}

// modelCosts covers the models the study flows are configured with, keyed
// by base model id. Prices from models.dev, 2026-02.
var modelCosts = map[string]ModelCost{
	"mock": {},

	// Anthropic
	"claude-3-haiku":    {0.25, 1.25},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-7-sonnet": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-5":   {5, 25},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o3-mini":      {1.1, 4.4},
	"o4-mini":      {1.1, 4.4},

	// Gemini
	"gemini-1.5-flash":      {0.075, 0.3},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
