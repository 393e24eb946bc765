package questiongen

import "github.com/abhisek/studyagent/internal/concept"

// Question types. Section questions carry the section id as a suffix,
// e.g. "application_s2".
const (
	TypeRecall        = "recall"
	TypeApplication   = "application"
	TypeSynthesis     = "synthesis"
	TypeBasicRecall   = "basic_recall"
	TypeUnderstanding = "understanding"
	TypeBasic         = "basic"
)

// FallbackExpectedAnswer is used when the model gives no expected answer.
const FallbackExpectedAnswer = "Basic understanding expected"

// Question is generated per attempt and never stored as its own record.
type Question struct {
	ConceptID string

	// Text is what the learner is asked.
	Text string

	// ExpectedAnswer is the model's reference answer. May be empty.
	ExpectedAnswer string

	Difficulty concept.Difficulty

	// Type is the question type tag, section-scoped when SectionID is set.
	Type string

	// SectionID and SectionIndex identify the notes section the question
	// targets. SectionIndex is -1 for concept-level questions.
	SectionID    string
	SectionIndex int

	// Fallback is true when the text came from a template rather than the
	// model.
	Fallback bool
}

// IsSectionQuestion reports whether the question targets a notes section.
func (q *Question) IsSectionQuestion() bool {
	return q.SectionIndex >= 0
}
