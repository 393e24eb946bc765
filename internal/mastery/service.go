package mastery

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/store"
)

// Service applies answer outcomes to stored concepts. It reads the current
// state, runs the scheduler and writes the result back with a conditional
// update, so a concurrent writer surfaces as store.ErrConflict instead of
// a lost update.
type Service struct {
	scheduler *Scheduler
}

// NewService creates a mastery service around the given scheduler.
func NewService(s *Scheduler) *Service {
	if s == nil {
		s = NewScheduler(nil)
	}
	return &Service{scheduler: s}
}

// Scheduler returns the underlying scheduler.
func (s *Service) Scheduler() *Scheduler {
	return s.scheduler
}

// RecordOutcome applies one outcome to the concept stored under conceptID.
// The returned concept reflects the written state.
func (s *Service) RecordOutcome(ctx context.Context, repo store.ConceptRepo, conceptID string, correct bool, hintsUsed int, now time.Time) (*concept.Concept, Update, error) {
	c, err := repo.GetConcept(ctx, conceptID)
	if err != nil {
		return nil, Update{}, err
	}

	u := s.scheduler.Apply(c, correct, hintsUsed, now)
	if err := repo.UpdateMastery(ctx, StoreUpdate(u)); err != nil {
		return nil, Update{}, fmt.Errorf("record outcome for %s: %w", conceptID, err)
	}
	u.ApplyTo(c)
	return c, u, nil
}

// RecordSection applies an outcome to one notes section of c and persists
// the section list. c is updated in place.
func (s *Service) RecordSection(ctx context.Context, repo store.ConceptRepo, c *concept.Concept, index int, correct bool, hintsUsed int, now time.Time) error {
	if index < 0 || index >= len(c.Sections) {
		return fmt.Errorf("section index %d out of range for %s", index, c.ID)
	}
	s.scheduler.ApplySection(&c.Sections[index], correct, hintsUsed, now)
	return repo.UpdateSections(ctx, c.ID, c.CurrentSection, c.Sections)
}

// StoreUpdate converts a scheduler update into the store's conditional
// mastery write.
func StoreUpdate(u Update) store.MasteryUpdate {
	return store.MasteryUpdate{
		ConceptID:         u.ConceptID,
		Mastery:           u.Mastery,
		CorrectStreak:     u.CorrectStreak,
		ReviewCount:       u.ReviewCount,
		LastReviewed:      u.LastReviewed,
		NextReview:        u.NextReview,
		ExpectReviewCount: u.PrevReviewCount,
	}
}
