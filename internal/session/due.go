package session

import (
	"context"
	"fmt"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/questiongen"
	"github.com/abhisek/studyagent/internal/store"
)

// Pick is a concept chosen for review together with its question.
type Pick struct {
	Concept  *concept.Concept
	Question questiongen.Question
}

// DueConcepts returns the concepts to review in classID ("" for all),
// lowest mastery first, then lowest streak, then earliest review time.
func (o *Orchestrator) DueConcepts(ctx context.Context, classID string) ([]*concept.Concept, error) {
	cs, err := o.repo.ListDue(ctx, store.DueQuery{
		ClassID:           classID,
		Now:               o.now(),
		IncludeStruggling: o.includeStruggling(),
	})
	if err != nil {
		return nil, fmt.Errorf("list due concepts: %w", err)
	}
	return cs, nil
}

// StartSession picks the first due concept and generates a question for
// it. It returns nil when nothing is due.
func (o *Orchestrator) StartSession(ctx context.Context, classID string) (*Pick, error) {
	due, err := o.DueConcepts(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	return o.pick(ctx, due[0])
}

// QuestionFor generates a question for a specific concept.
func (o *Orchestrator) QuestionFor(ctx context.Context, conceptID string) (*Pick, error) {
	c, err := o.repo.GetConcept(ctx, conceptID)
	if err != nil {
		return nil, err
	}
	return o.pick(ctx, c)
}

func (o *Orchestrator) pick(ctx context.Context, c *concept.Concept) (*Pick, error) {
	current := c.CurrentSection
	q := o.questions.Generate(ctx, c)

	// The generator moves the focus section forward as sections are
	// mastered; keep the store in step.
	if c.HasSections() && c.CurrentSection != current {
		if err := o.repo.UpdateSections(ctx, c.ID, c.CurrentSection, c.Sections); err != nil {
			return nil, fmt.Errorf("update focus section: %w", err)
		}
	}
	return &Pick{Concept: c, Question: q}, nil
}
