// Package notify publishes study events (recorded reviews, mastery changes)
// to downstream consumers.
package notify

import (
	"context"
	"time"

	"github.com/abhisek/studyagent/internal/concept"
)

// Routing keys.
const (
	EventReviewRecorded = "review.recorded"
	EventMasteryChanged = "mastery.changed"
)

// ReviewRecorded is emitted after a review session is committed.
type ReviewRecorded struct {
	EventType   string    `json:"event_type"`
	SessionID   string    `json:"session_id"`
	ConceptID   string    `json:"concept_id"`
	ClassID     string    `json:"class_id"`
	SessionType string    `json:"session_type"`
	Correct     bool      `json:"correct"`
	HintsUsed   int       `json:"hints_used"`
	Timestamp   time.Time `json:"timestamp"`
}

// MasteryChanged is emitted when a concept moves up or down a level.
type MasteryChanged struct {
	EventType   string    `json:"event_type"`
	ConceptID   string    `json:"concept_id"`
	ConceptName string    `json:"concept_name"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Trigger     string    `json:"trigger"`
	NextReview  time.Time `json:"next_review"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewMasteryChanged builds a mastery event for a level change.
func NewMasteryChanged(conceptID, name string, from, to concept.Level, nextReview, at time.Time) *MasteryChanged {
	trigger := "promotion"
	if to < from {
		trigger = "demotion"
	}
	return &MasteryChanged{
		EventType:   EventMasteryChanged,
		ConceptID:   conceptID,
		ConceptName: name,
		From:        from.String(),
		To:          to.String(),
		Trigger:     trigger,
		NextReview:  nextReview,
		Timestamp:   at,
	}
}

// Publisher delivers study events. Publishing happens after the store
// commit, so a failed publish never rolls back a recorded answer.
type Publisher interface {
	PublishReview(ctx context.Context, ev *ReviewRecorded) error
	PublishMastery(ctx context.Context, ev *MasteryChanged) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishReview(context.Context, *ReviewRecorded) error { return nil }
func (Nop) PublishMastery(context.Context, *MasteryChanged) error { return nil }
func (Nop) Close() error { return nil }
