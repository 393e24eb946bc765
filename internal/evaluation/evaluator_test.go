package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/questiongen"
)

func testQuestion() questiongen.Question {
	return questiongen.Question{
		ConceptID:      "c1",
		Text:           "What is the average lookup cost of a hash table?",
		ExpectedAnswer: "O(1) on average",
		SectionIndex:   -1,
	}
}

func testConcept() *concept.Concept {
	return &concept.Concept{ID: "c1", Name: "Hash Tables", Content: "Hash tables give O(1) average lookups."}
}

func TestEvaluate_Labels(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantCorrect bool
		wantLabel   Label
		wantHints   int
	}{
		{"correct", "Score: Correct\nFeedback: Spot on.\nHints:", true, LabelCorrect, 0},
		{"partial counts as correct", "Score: Partially Correct\nFeedback: Close.\nHints: Think about collisions | Average vs worst case", true, LabelPartial, 2},
		{"incorrect", "Score: Incorrect\nFeedback: Not quite.\nHints: a | b | c", false, LabelIncorrect, 3},
		{"bold label", "Score: **Correct**\nFeedback: Yes.", true, LabelCorrect, 0},
		{"missing score", "Feedback: Hmm.", false, LabelIncorrect, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewTextMock(tt.reply)
			ev := New(mock, DefaultConfig(), nil)

			res := ev.Evaluate(context.Background(), testQuestion(), "Constant time on average")
			if res.Correct != tt.wantCorrect || res.Label != tt.wantLabel {
				t.Fatalf("got correct=%v label=%q, want %v %q", res.Correct, res.Label, tt.wantCorrect, tt.wantLabel)
			}
			if len(res.Hints) != tt.wantHints {
				t.Fatalf("expected %d hints, got %v", tt.wantHints, res.Hints)
			}
			if res.Fallback {
				t.Fatal("unexpected fallback")
			}
		})
	}
}

func TestEvaluate_PromptAndBudget(t *testing.T) {
	mock := llm.NewTextMock("Score: Correct\nFeedback: ok")
	ev := New(mock, DefaultConfig(), nil)

	ev.Evaluate(context.Background(), testQuestion(), "Constant time")

	prompt := mock.LastPrompt()
	for _, want := range []string{"Question: What is the average lookup cost", "Expected Answer: O(1) on average", "Student's Answer: Constant time"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if mock.Calls[0].MaxTokens != 400 {
		t.Errorf("expected 400 max tokens, got %d", mock.Calls[0].MaxTokens)
	}
}

func TestEvaluate_Fallback(t *testing.T) {
	tests := []struct {
		answer      string
		wantCorrect bool
	}{
		{"short", false},
		{"   exactly10!   ", false},
		{"a reasonably long answer", true},
	}
	for _, tt := range tests {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
		ev := New(mock, DefaultConfig(), nil)

		res := ev.Evaluate(context.Background(), testQuestion(), tt.answer)
		if res.Correct != tt.wantCorrect {
			t.Errorf("answer %q: expected correct=%v", tt.answer, tt.wantCorrect)
		}
		if !res.Fallback || len(res.Hints) != 3 || res.Hints[0] != "Try to be more specific" {
			t.Errorf("unexpected fallback result: %+v", res)
		}
	}
}

func TestEvaluateScored(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: `{"correct": true, "score": 85, "feedback": "Good explanation."}`})
	ev := New(mock, DefaultConfig(), nil)

	got := ev.EvaluateScored(context.Background(), testQuestion(), "Constant time on average", testConcept())

	if !got.Correct || got.Score != 85 || got.Feedback != "Good explanation." || got.Fallback {
		t.Fatalf("unexpected scored result: %+v", got)
	}
	req := mock.Calls[0]
	if req.Schema != ScoredSchema || req.MaxTokens != 300 || req.Temperature != 0.3 {
		t.Fatalf("unexpected request: schema=%v tokens=%d temp=%.1f", req.Schema, req.MaxTokens, req.Temperature)
	}
	if !strings.Contains(mock.LastPrompt(), "Concept Context: Hash tables give O(1) average lookups.") {
		t.Errorf("prompt missing concept context: %q", mock.LastPrompt())
	}
}

func TestEvaluateScored_InvalidReplyFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		reply llm.MockResponse
	}{
		{"not json", llm.MockResponse{Text: "Great answer!"}},
		{"score out of range", llm.MockResponse{Text: `{"correct": true, "score": 140, "feedback": "x"}`}},
		{"missing field", llm.MockResponse{Text: `{"correct": true}`}},
		{"service error", llm.MockResponse{Err: errors.New("down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := New(llm.NewMockProvider(tt.reply), DefaultConfig(), nil)

			got := ev.EvaluateScored(context.Background(), testQuestion(), "a reasonably long answer", testConcept())
			if !got.Fallback || got.Score != 50 || !got.Correct {
				t.Fatalf("expected length-heuristic fallback, got %+v", got)
			}
			if got.Feedback != "Answer received. Please review the concept material for better understanding." {
				t.Fatalf("unexpected feedback: %q", got.Feedback)
			}
		})
	}
}

func TestIdentifyWeaknesses(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "taxonomy names",
			reply: "Time complexity understanding, Use cases and applications",
			want:  []string{"time complexity understanding", "use cases and applications"},
		},
		{
			name:  "keywords normalize and dedupe",
			reply: "Big-O complexity, performance analysis, implementation of probing",
			want:  []string{"time complexity understanding", "implementation details"},
		},
		{
			name:  "short entries dropped and capped at three",
			reply: "n/a, terminology, code structure, choosing an approach, conceptual relationships",
			want:  []string{"definitions and terminology", "implementation details", "problem-solving approach"},
		},
		{
			name:  "unknown labels kept",
			reply: "Hash function design",
			want:  []string{"hash function design"},
		},
		{
			name:  "nothing usable",
			reply: "ok, -, a",
			want:  []string{GeneralUnderstanding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewTextMock(tt.reply)
			ev := New(mock, DefaultConfig(), nil)

			got := ev.IdentifyWeaknesses(context.Background(), testConcept(), "it is fast", "O(1) on average")
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if mock.Calls[0].MaxTokens != 150 {
				t.Fatalf("expected 150 max tokens, got %d", mock.Calls[0].MaxTokens)
			}
		})
	}
}

func TestIdentifyWeaknesses_ServiceFailure(t *testing.T) {
	ev := New(llm.NewMockProvider(llm.MockResponse{Err: errors.New("down")}), DefaultConfig(), nil)

	got := ev.IdentifyWeaknesses(context.Background(), testConcept(), "it is fast", "O(1)")
	if len(got) != 1 || got[0] != GeneralUnderstanding {
		t.Fatalf("expected general understanding, got %q", got)
	}
}

func TestParseLabel(t *testing.T) {
	tests := map[string]Label{
		"Correct":            LabelCorrect,
		" correct. ":         LabelCorrect,
		"Partially Correct":  LabelPartial,
		"partially correct!": LabelPartial,
		"Incorrect":          LabelIncorrect,
		"Wrong":              LabelIncorrect,
		"":                   LabelIncorrect,
	}
	for in, want := range tests {
		if got := ParseLabel(in); got != want {
			t.Errorf("ParseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
