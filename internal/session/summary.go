package session

import (
	"time"

	"github.com/abhisek/studyagent/internal/mastery"
)

// Summary accumulates the results of a run of single-answer reviews.
type Summary struct {
	Started     time.Time
	Answered    int
	Correct     int
	Transitions []mastery.Transition
}

// NewSummary starts an empty summary.
func NewSummary(start time.Time) *Summary {
	return &Summary{Started: start}
}

// Add records one graded answer.
func (s *Summary) Add(r *SubmitResult) {
	s.Answered++
	if r.Correct {
		s.Correct++
	}
	if r.Update.Transition != nil {
		s.Transitions = append(s.Transitions, *r.Update.Transition)
	}
}

// Accuracy returns the share of correct answers, 0 when nothing was
// answered.
func (s *Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

// Promotions counts transitions that moved a concept up.
func (s *Summary) Promotions() int {
	n := 0
	for i := range s.Transitions {
		if s.Transitions[i].Promoted() {
			n++
		}
	}
	return n
}
