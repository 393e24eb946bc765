package evaluation

import "github.com/abhisek/studyagent/internal/llm"

// ScoredSchema defines the JSON reply for rubric evaluation.
var ScoredSchema = &llm.Schema{
	Name:        "answer-score",
	Description: "Grade of a student's free-text answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the answer shows adequate understanding",
			},
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "Score from 0 to 100; partial credit allowed",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Encouraging but honest feedback for the student",
			},
		},
		"required":             []any{"correct", "score", "feedback"},
		"additionalProperties": false,
	},
}
