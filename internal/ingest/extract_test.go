package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/llm"
)

func TestExtract(t *testing.T) {
	reply := `Here are the concepts:
[
  {"name": "Stack", "content": "LIFO structure", "difficulty": 1},
  {"name": "Queue", "content": "FIFO structure", "difficulty": 2},
  {"name": "Heap", "content": "Priority ordering", "difficulty": "advanced"}
]
Hope this helps!`
	mock := llm.NewTextMock(reply)
	ex := New(mock, DefaultConfig(), nil)

	drafts, err := ex.Extract(context.Background(), "Lecture 4: stacks, queues and heaps")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []Draft{
		{Name: "Stack", Content: "LIFO structure", Difficulty: concept.DifficultyBasic},
		{Name: "Queue", Content: "FIFO structure", Difficulty: concept.DifficultyIntermediate},
		{Name: "Heap", Content: "Priority ordering", Difficulty: concept.DifficultyAdvanced},
	}
	if len(drafts) != len(want) {
		t.Fatalf("got %d drafts, want %d", len(drafts), len(want))
	}
	for i := range want {
		if drafts[i] != want[i] {
			t.Errorf("draft %d = %+v, want %+v", i, drafts[i], want[i])
		}
	}

	if got := mock.Calls[0].MaxTokens; got != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", got)
	}
}

func TestExtract_TruncatesNotes(t *testing.T) {
	mock := llm.NewTextMock(`[{"name": "A", "content": "a"}]`)
	ex := New(mock, Config{MaxTokens: 100, MaxContentChars: 10}, nil)

	if _, err := ex.Extract(context.Background(), strings.Repeat("x", 50)+"TAIL"); err != nil {
		t.Fatal(err)
	}
	prompt := mock.LastPrompt()
	if strings.Contains(prompt, "TAIL") {
		t.Error("expected notes to be truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 10)) {
		t.Error("expected truncated notes in prompt")
	}
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply llm.MockResponse
	}{
		{"no array", llm.MockResponse{Text: "I could not find any concepts."}},
		{"schema mismatch", llm.MockResponse{Text: `[{"content": "no name"}]`}},
		{"empty array", llm.MockResponse{Text: `[]`}},
		{"service error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(llm.NewMockProvider(tt.reply), DefaultConfig(), nil)
			drafts, err := ex.Extract(context.Background(), "some notes")
			if err == nil {
				t.Fatalf("expected error, got drafts %+v", drafts)
			}
			if !llm.IsServiceError(err) && !errors.As(err, new(*llm.ErrInvalidResponse)) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
		})
	}
}

func TestExtract_EmptyNotes(t *testing.T) {
	mock := llm.NewMockProvider()
	ex := New(mock, DefaultConfig(), nil)
	if _, err := ex.Extract(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty notes")
	}
	if mock.CallCount() != 0 {
		t.Error("expected no provider call for empty notes")
	}
}

func TestDedupe(t *testing.T) {
	existing := []*concept.Concept{{Name: "Binary Search"}}
	drafts := []Draft{
		{Name: "binary search"},
		{Name: "Merge Sort"},
		{Name: "MERGE SORT"},
		{Name: "Quick Sort"},
	}

	kept, skipped := Dedupe(drafts, existing)

	if len(kept) != 2 || kept[0].Name != "Merge Sort" || kept[1].Name != "Quick Sort" {
		t.Errorf("kept = %+v", kept)
	}
	if len(skipped) != 2 || skipped[0] != "binary search" || skipped[1] != "MERGE SORT" {
		t.Errorf("skipped = %v", skipped)
	}
}
