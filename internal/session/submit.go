package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/lock"
	"github.com/abhisek/studyagent/internal/mastery"
	"github.com/abhisek/studyagent/internal/notify"
	"github.com/abhisek/studyagent/internal/questiongen"
	"github.com/abhisek/studyagent/internal/store"
)

// SubmitRequest is one answer to a generated question.
type SubmitRequest struct {
	ConceptID string
	Question  questiongen.Question
	Answer    string
	HintsUsed int
}

// SubmitResult is the graded outcome of a single answer.
type SubmitResult struct {
	Correct  bool
	Feedback string

	// Label and Hints are set in labeled mode.
	Label evaluation.Label
	Hints []string

	// Score is set in scored mode, -1 otherwise.
	Score int

	// Fallback is true when the grader could not be reached.
	Fallback bool

	// Concept is the concept after the mastery update.
	Concept   *concept.Concept
	Update    mastery.Update
	SessionID string
}

// SubmitAnswer grades an answer and records it. The mastery update, the
// section update and the review session are written in one transaction,
// in that order. Events are published after the commit.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(&req); err != nil {
		return nil, err
	}

	c, err := o.repo.GetConcept(ctx, req.ConceptID)
	if err != nil {
		return nil, err
	}

	res := o.grade(ctx, req, c)

	unlock, err := o.locker.Lock(ctx, lock.ConceptKey(c.ID))
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	defer unlock()

	now := o.now()
	rs := &store.ReviewSession{
		ConceptID:          c.ID,
		Question:           req.Question.Text,
		UserAnswer:         req.Answer,
		Correct:            res.Correct,
		Timestamp:          now,
		HintsUsed:          req.HintsUsed,
		WeaknessIdentified: !res.Correct,
		Feedback:           res.Feedback,
		SessionType:        store.SessionTypePractice,
	}

	err = o.repo.WithTx(ctx, func(tx store.Repo) error {
		updated, u, err := o.mastery.RecordOutcome(ctx, tx, c.ID, res.Correct, req.HintsUsed, now)
		if err != nil {
			return err
		}
		if req.Question.IsSectionQuestion() && req.Question.SectionIndex < len(updated.Sections) {
			if err := o.mastery.RecordSection(ctx, tx, updated, req.Question.SectionIndex, res.Correct, req.HintsUsed, now); err != nil {
				return err
			}
		}
		res.Concept = updated
		res.Update = u
		return tx.AppendReviewSession(ctx, rs)
	})
	if err != nil {
		return nil, fmt.Errorf("record answer for %s: %w", c.ID, err)
	}
	res.SessionID = rs.ID

	o.publishReview(ctx, rs, c.ClassID)
	o.publishTransition(ctx, res.Update)
	return res, nil
}

func validateSubmit(req *SubmitRequest) error {
	req.Answer = strings.TrimSpace(req.Answer)
	switch {
	case req.ConceptID == "":
		return fmt.Errorf("%w: missing concept id", ErrValidation)
	case strings.TrimSpace(req.Question.Text) == "":
		return fmt.Errorf("%w: missing question", ErrValidation)
	case req.Answer == "":
		return fmt.Errorf("%w: empty answer", ErrValidation)
	case req.HintsUsed < 0:
		return fmt.Errorf("%w: negative hint count", ErrValidation)
	}
	return nil
}

func (o *Orchestrator) grade(ctx context.Context, req SubmitRequest, c *concept.Concept) *SubmitResult {
	if o.config.EvalMode == EvalScored {
		s := o.grader.EvaluateScored(ctx, req.Question, req.Answer, c)
		return &SubmitResult{
			Correct:  s.Correct,
			Feedback: s.Feedback,
			Score:    s.Score,
			Fallback: s.Fallback,
		}
	}
	r := o.grader.Evaluate(ctx, req.Question, req.Answer)
	return &SubmitResult{
		Correct:  r.Correct,
		Feedback: r.Feedback,
		Label:    r.Label,
		Hints:    r.Hints,
		Score:    -1,
		Fallback: r.Fallback,
	}
}

func (o *Orchestrator) publishReview(ctx context.Context, rs *store.ReviewSession, classID string) {
	err := o.publisher.PublishReview(ctx, &notify.ReviewRecorded{
		EventType:   notify.EventReviewRecorded,
		SessionID:   rs.ID,
		ConceptID:   rs.ConceptID,
		ClassID:     classID,
		SessionType: rs.SessionType,
		Correct:     rs.Correct,
		HintsUsed:   rs.HintsUsed,
		Timestamp:   rs.Timestamp,
	})
	if err != nil {
		o.logger.Warn("failed to publish review event",
			zap.String("concept_id", rs.ConceptID), zap.Error(err))
	}
}

func (o *Orchestrator) publishTransition(ctx context.Context, u mastery.Update) {
	t := u.Transition
	if t == nil {
		return
	}
	ev := notify.NewMasteryChanged(t.ConceptID, t.ConceptName, t.From, t.To, u.NextReview, u.LastReviewed)
	if err := o.publisher.PublishMastery(ctx, ev); err != nil {
		o.logger.Warn("failed to publish mastery event",
			zap.String("concept_id", t.ConceptID), zap.Error(err))
	}
}
