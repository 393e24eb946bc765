package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider is the core abstraction for LLM interaction. Every tutoring
// prompt (question writing, grading, hints, concept extraction) goes
// through Generate.
type Provider interface {
	// Generate sends a prompt to the LLM. When the request carries a Schema
	// the response Content holds JSON validated against it; otherwise the
	// reply is returned as plain Text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Single-shot prompts carry one
	// user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response is free text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "answer-score".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Text is the raw reply.
	Text string

	// Content is the validated JSON object when a Schema was requested.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Decode unmarshals the structured content into v.
func (r *Response) Decode(v any) error {
	if len(r.Content) == 0 {
		return &ErrInvalidResponse{Err: fmt.Errorf("response has no structured content")}
	}
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: err}
	}
	return nil
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Complete sends a single user prompt and returns the trimmed text reply.
// It is the plain-text completion used by the tutoring prompts.
func Complete(ctx context.Context, p Provider, prompt string, maxTokens int) (string, error) {
	resp, err := p.Generate(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &ErrInvalidResponse{Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}
