package evaluation

import "strings"

// Label is the grader's verdict on a free-text answer.
type Label string

const (
	LabelCorrect   Label = "Correct"
	LabelPartial   Label = "Partially Correct"
	LabelIncorrect Label = "Incorrect"
)

// ParseLabel normalizes a grader label. Unrecognized labels are Incorrect.
func ParseLabel(s string) Label {
	s = strings.Trim(strings.TrimSpace(s), "*.!")
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return LabelCorrect
	case "partially correct", "partial":
		return LabelPartial
	default:
		return LabelIncorrect
	}
}

// Passing reports whether the label counts as a correct answer. Partial
// credit passes.
func (l Label) Passing() bool {
	return l == LabelCorrect || l == LabelPartial
}

// Result is the outcome of a labeled evaluation.
type Result struct {
	Correct  bool
	Label    Label
	Feedback string
	Hints    []string

	// Fallback is true when the grader was unavailable and the result
	// came from the length heuristic.
	Fallback bool
}

// Scored is the outcome of a rubric evaluation with a 0-100 score.
type Scored struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`

	Fallback bool `json:"-"`
}

// Config controls the Evaluator's request budgets.
type Config struct {
	MaxTokens         int
	ScoredMaxTokens   int
	ScoredTemperature float64
	WeaknessMaxTokens int

	// MinAnswerLength is the trimmed length an answer must exceed to pass
	// when the grader is unavailable.
	MinAnswerLength int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         400,
		ScoredMaxTokens:   300,
		ScoredTemperature: 0.3,
		WeaknessMaxTokens: 150,
		MinAnswerLength:   10,
	}
}
