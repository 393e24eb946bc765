package tutor

import (
	"time"

	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/mastery"
)

// Conversation statuses.
const (
	StatusContinuing = "continuing"
	StatusCompleted  = "completed"
)

// ContinueResult is returned for every graded student reply.
type ContinueResult struct {
	Status          string
	Correct         bool
	Label           evaluation.Label
	GuidingResponse string

	// Transitioned is true when the tutor moved on to a new aspect of the
	// concept instead of a follow-up on the same one.
	Transitioned bool

	// Improving is true when the reply looks more developed than the
	// student's first answer.
	Improving bool

	Attempts         int
	NeedsRemediation bool

	// Weaknesses are the areas identified in this reply.
	Weaknesses []string
}

// Complete always reports false. Only End finishes a conversation.
func (r ContinueResult) Complete() bool {
	return false
}

// QuestionResult answers a question the student asked.
type QuestionResult struct {
	Answer   string
	FollowUp string
	Fallback bool
}

// EndResult summarizes a finished conversation.
type EndResult struct {
	Status            string
	TotalAttempts     int
	RemediationNeeded bool
	Transcript        Transcript

	// Recorded is false when the student never replied, in which case no
	// review session was written.
	Recorded  bool
	SessionID string
	Timestamp time.Time

	// MasteryApplied is false when the final mastery update was skipped.
	MasteryApplied bool
	Update         *mastery.Update
}
