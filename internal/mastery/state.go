package mastery

import "github.com/abhisek/studyagent/internal/concept"

// Transition records a mastery level change for display and event publishing.
type Transition struct {
	ConceptID   string
	ConceptName string
	From        concept.Level
	To          concept.Level
	Trigger     string // "promotion", "demotion"
}

// Promoted reports whether the transition moved the concept up the ladder.
func (t *Transition) Promoted() bool {
	return t != nil && t.To > t.From
}
