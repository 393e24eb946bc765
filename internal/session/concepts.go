package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/ingest"
	"github.com/abhisek/studyagent/internal/store"
)

// NewConcept is the input for AddConcept.
type NewConcept struct {
	ClassID    string
	Name       string
	Content    string
	Difficulty concept.Difficulty
}

// SectionInput is one section of structured notes.
type SectionInput struct {
	Title   string
	Content string
}

// ExtractResult reports the outcome of concept extraction.
type ExtractResult struct {
	Created []*concept.Concept

	// Skipped names already existed in the class.
	Skipped []string

	// Failed is true when the model could not produce concepts.
	Failed bool
}

// AddConcept stores a new concept. It starts at UNKNOWN and is due
// immediately.
func (o *Orchestrator) AddConcept(ctx context.Context, in NewConcept) (*concept.Concept, error) {
	c, err := o.newConcept(in)
	if err != nil {
		return nil, err
	}
	if err := o.repo.CreateConcept(ctx, c); err != nil {
		return nil, fmt.Errorf("add concept %q: %w", c.Name, err)
	}
	return c, nil
}

// AddConceptFromSections stores a concept built from ordered notes
// sections and returns the stored concepts. Its content is the sections
// joined in order.
func (o *Orchestrator) AddConceptFromSections(ctx context.Context, classID, name string, sections []SectionInput) ([]*concept.Concept, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrValidation)
	}

	var (
		parts []string
		secs  []concept.Section
	)
	for i, s := range sections {
		title := strings.TrimSpace(s.Title)
		content := strings.TrimSpace(s.Content)
		if title == "" || content == "" {
			return nil, fmt.Errorf("%w: section %d needs a title and content", ErrValidation, i+1)
		}
		secs = append(secs, concept.Section{
			ID:      fmt.Sprintf("s%d", i+1),
			Title:   title,
			Content: content,
			Order:   i,
		})
		parts = append(parts, title+"\n"+content)
	}

	c, err := o.newConcept(NewConcept{
		ClassID: classID,
		Name:    name,
		Content: strings.Join(parts, "\n\n"),
	})
	if err != nil {
		return nil, err
	}
	c.Sections = secs

	if err := o.repo.CreateConcept(ctx, c); err != nil {
		return nil, fmt.Errorf("add concept %q: %w", c.Name, err)
	}
	return []*concept.Concept{c}, nil
}

// ExtractConcepts asks the model for concepts covering notes and stores
// the ones whose names are new to the class. Model failures are reported
// through ExtractResult.Failed, not as an error.
func (o *Orchestrator) ExtractConcepts(ctx context.Context, classID, notes string) (*ExtractResult, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("%w: empty notes", ErrValidation)
	}
	if classID == "" {
		classID = concept.DefaultClassID
	}
	if o.extractor == nil {
		return &ExtractResult{Failed: true}, nil
	}

	drafts, err := o.extractor.Extract(ctx, notes)
	if err != nil {
		o.logger.Warn("concept extraction failed",
			zap.String("class_id", classID), zap.Error(err))
		return &ExtractResult{Failed: true}, nil
	}

	existing, err := o.repo.ListConcepts(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}
	kept, skipped := ingest.Dedupe(drafts, existing)

	res := &ExtractResult{Skipped: skipped}
	err = o.repo.WithTx(ctx, func(tx store.Repo) error {
		for _, d := range kept {
			c, err := o.newConcept(NewConcept{
				ClassID:    classID,
				Name:       d.Name,
				Content:    d.Content,
				Difficulty: d.Difficulty,
			})
			if err != nil {
				return err
			}
			if err := tx.CreateConcept(ctx, c); err != nil {
				return err
			}
			res.Created = append(res.Created, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store extracted concepts: %w", err)
	}
	return res, nil
}

// History returns the review sessions of a concept, newest first.
func (o *Orchestrator) History(ctx context.Context, conceptID string, limit int) ([]store.ReviewSession, error) {
	if _, err := o.repo.GetConcept(ctx, conceptID); err != nil {
		return nil, err
	}
	return o.repo.ListReviewSessions(ctx, conceptID, limit)
}

// Weaknesses returns a concept's tracked weaknesses, most severe first.
func (o *Orchestrator) Weaknesses(ctx context.Context, conceptID string) ([]store.Weakness, error) {
	if _, err := o.repo.GetConcept(ctx, conceptID); err != nil {
		return nil, err
	}
	return o.repo.ListWeaknesses(ctx, conceptID)
}

// Concepts lists the concepts of classID ("" for all).
func (o *Orchestrator) Concepts(ctx context.Context, classID string) ([]*concept.Concept, error) {
	return o.repo.ListConcepts(ctx, classID)
}

func (o *Orchestrator) newConcept(in NewConcept) (*concept.Concept, error) {
	name := strings.TrimSpace(in.Name)
	content := strings.TrimSpace(in.Content)
	if name == "" {
		return nil, fmt.Errorf("%w: concept name is required", ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: concept content is required", ErrValidation)
	}

	classID := in.ClassID
	if classID == "" {
		classID = concept.DefaultClassID
	}
	difficulty := in.Difficulty
	if difficulty == 0 {
		difficulty = concept.DifficultyBasic
	}

	now := o.now()
	return &concept.Concept{
		ID:         uuid.NewString(),
		ClassID:    classID,
		Name:       name,
		Content:    content,
		Mastery:    concept.LevelUnknown,
		Difficulty: difficulty,
		NextReview: now,
		CreatedAt:  now,
	}, nil
}
