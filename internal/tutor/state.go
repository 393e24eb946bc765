package tutor

import "github.com/abhisek/studyagent/internal/questiongen"

// Phase is the conversation's position in its lifecycle.
type Phase int

const (
	PhaseStarted Phase = iota
	PhaseContinuing
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseContinuing:
		return "continuing"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// State is the in-memory state of one tutoring conversation. It belongs
// to a single caller and is not safe for concurrent use.
type State struct {
	ConceptID   string
	ConceptName string

	// Question is the opening question every student reply is graded
	// against.
	Question questiongen.Question

	Turns            Transcript
	Attempts         int
	NeedsRemediation bool

	// WeaknessAreas starts with the concept's stored weaknesses and grows
	// with every incorrect reply.
	WeaknessAreas []string

	Phase Phase
}

// OriginalQuestion returns the text of the opening question.
func (s *State) OriginalQuestion() string {
	return s.Question.Text
}

// Ended reports whether End has been called.
func (s *State) Ended() bool {
	return s.Phase == PhaseEnded
}

func (s *State) addTurn(role Role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}

func (s *State) addWeaknesses(areas []string) {
	for _, a := range areas {
		found := false
		for _, existing := range s.WeaknessAreas {
			if existing == a {
				found = true
				break
			}
		}
		if !found {
			s.WeaknessAreas = append(s.WeaknessAreas, a)
		}
	}
}
