package session

import (
	"context"

	"github.com/abhisek/studyagent/internal/store"
	"github.com/abhisek/studyagent/internal/tutor"
)

// StartConversation opens a tutoring conversation about a concept.
func (o *Orchestrator) StartConversation(ctx context.Context, conceptID string) (*tutor.State, error) {
	return o.tutor.Start(ctx, conceptID)
}

// ContinueConversation grades a reply and returns the tutor's guidance.
func (o *Orchestrator) ContinueConversation(ctx context.Context, st *tutor.State, reply string) (tutor.ContinueResult, error) {
	return o.tutor.Continue(ctx, st, reply)
}

// AskTutor answers a question the student asked mid-conversation.
func (o *Orchestrator) AskTutor(ctx context.Context, st *tutor.State, question string) (tutor.QuestionResult, error) {
	return o.tutor.AnswerQuestion(ctx, st, question)
}

// EndConversation finishes a conversation and publishes its events.
func (o *Orchestrator) EndConversation(ctx context.Context, st *tutor.State) (tutor.EndResult, error) {
	res, err := o.tutor.End(ctx, st)
	if err != nil || !res.Recorded {
		return res, err
	}

	classID := ""
	if c, err := o.repo.GetConcept(ctx, st.ConceptID); err == nil {
		classID = c.ClassID
	}
	o.publishReview(ctx, &store.ReviewSession{
		ID:          res.SessionID,
		ConceptID:   st.ConceptID,
		Correct:     !res.RemediationNeeded,
		Timestamp:   res.Timestamp,
		SessionType: store.SessionTypeConversation,
	}, classID)
	if res.Update != nil {
		o.publishTransition(ctx, *res.Update)
	}
	return res, nil
}
