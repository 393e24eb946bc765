// Package ingest turns free-form study notes into concept drafts using the
// language model.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/llm"
)

// Draft is a concept proposed by the extractor, not yet stored.
type Draft struct {
	Name       string
	Content    string
	Difficulty concept.Difficulty
}

// Config controls extraction.
type Config struct {
	MaxTokens int

	// MaxContentChars truncates long notes before they are sent.
	MaxContentChars int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       2000,
		MaxContentChars: 8000,
	}
}

// DraftsSchema validates the JSON array found in the model's reply.
var DraftsSchema = &llm.Schema{
	Name:        "concept-drafts",
	Description: "Key concepts extracted from lecture notes",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":       map[string]any{"type": "string", "minLength": 1},
				"content":    map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": []any{"integer", "string"}},
			},
			"required": []any{"name", "content"},
		},
	},
}

const promptTemplate = `Based on the following lecture content, generate 5-8 key concepts for active recall study.
Each concept should be a fundamental idea, definition, or principle that a student should master.

Return ONLY a JSON array in this exact format:
[
  {"name": "Concept Name", "content": "Detailed explanation of the concept", "difficulty": 1},
  {"name": "Another Concept", "content": "Another explanation", "difficulty": 2}
]

Difficulty levels: 1=Basic, 2=Intermediate, 3=Advanced

Content:
%s`

// Extractor proposes concepts from notes.
type Extractor struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// New creates an Extractor. logger may be nil.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{provider: provider, config: cfg, logger: logger}
}

// Extract asks the model for concepts covering notes. Errors are service
// or parse failures; callers decide whether to surface them.
func (e *Extractor) Extract(ctx context.Context, notes string) ([]Draft, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, fmt.Errorf("no notes to extract from")
	}

	prompt := fmt.Sprintf(promptTemplate, truncate(notes, e.config.MaxContentChars))
	reply, err := llm.Complete(llm.WithPurpose(ctx, llm.PurposeExtract), e.provider, prompt, e.config.MaxTokens)
	if err != nil {
		return nil, err
	}

	drafts, err := parseDrafts(reply)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted concepts", zap.Int("count", len(drafts)))
	return drafts, nil
}

type rawDraft struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	Difficulty any    `json:"difficulty"`
}

// parseDrafts pulls the JSON array out of a reply that may carry text
// before or after it.
func parseDrafts(reply string) ([]Draft, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, &llm.ErrInvalidResponse{Err: fmt.Errorf("no JSON array in reply")}
	}
	raw := json.RawMessage(reply[start : end+1])

	if err := llm.Validate(DraftsSchema, raw); err != nil {
		return nil, err
	}

	var items []rawDraft
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}

	drafts := make([]Draft, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		d := Draft{
			Name:       name,
			Content:    strings.TrimSpace(it.Content),
			Difficulty: concept.DifficultyBasic,
		}
		if it.Difficulty != nil {
			d.Difficulty = concept.ParseDifficulty(fmt.Sprint(it.Difficulty))
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// Dedupe drops drafts whose name matches an existing concept or an earlier
// draft, ignoring case. It returns the kept drafts and the skipped names.
func Dedupe(drafts []Draft, existing []*concept.Concept) (kept []Draft, skipped []string) {
	seen := make(map[string]bool, len(existing)+len(drafts))
	for _, c := range existing {
		seen[strings.ToLower(strings.TrimSpace(c.Name))] = true
	}
	for _, d := range drafts {
		key := strings.ToLower(d.Name)
		if seen[key] {
			skipped = append(skipped, d.Name)
			continue
		}
		seen[key] = true
		kept = append(kept, d)
	}
	return kept, skipped
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
