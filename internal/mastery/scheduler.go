package mastery

import (
	"time"

	"github.com/abhisek/studyagent/internal/concept"
)

// Intervals defines the review spacing in days, indexed by mastery level.
var Intervals = [...]int{
	concept.LevelUnknown:    1,
	concept.LevelLearning:   2,
	concept.LevelFamiliar:   4,
	concept.LevelProficient: 7,
	concept.LevelMastered:   14,
}

// FailureIntervalDays is the spacing after an incorrect answer.
const FailureIntervalDays = 1

// IntervalDays returns the review interval for a level after a correct answer.
func IntervalDays(l concept.Level) int {
	if !l.Valid() {
		return Intervals[concept.LevelUnknown]
	}
	return Intervals[l]
}

// Update is the result of applying one answer outcome to a concept. It
// carries every field the store persists for a mastery change.
type Update struct {
	ConceptID     string
	Mastery       concept.Level
	CorrectStreak int
	ReviewCount   int
	LastReviewed  time.Time
	NextReview    time.Time

	// PrevReviewCount is the review count the update was computed from.
	// Stores use it to detect a concurrent write to the same concept.
	PrevReviewCount int

	Success    bool
	Transition *Transition
}

// ApplyTo copies the update onto c.
func (u Update) ApplyTo(c *concept.Concept) {
	c.Mastery = u.Mastery
	c.CorrectStreak = u.CorrectStreak
	c.ReviewCount = u.ReviewCount
	last := u.LastReviewed
	c.LastReviewed = &last
	c.NextReview = u.NextReview
}

// Scheduler computes mastery and review timing after each evaluated answer.
// It holds no state beyond its policy and is safe for concurrent use.
type Scheduler struct {
	policy Policy
}

// NewScheduler creates a scheduler. A nil policy selects StreakPolicy.
func NewScheduler(p Policy) *Scheduler {
	if p == nil {
		p = StreakPolicy{Threshold: DefaultStreakThreshold}
	}
	return &Scheduler{policy: p}
}

// Policy returns the scheduler's promotion policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// Apply computes the concept's next state. A clean success requires a
// correct answer with no hints. c is not modified.
func (s *Scheduler) Apply(c *concept.Concept, correct bool, hintsUsed int, now time.Time) Update {
	success := correct && hintsUsed == 0

	level, streak := s.step(c.Mastery, c.CorrectStreak, success)

	u := Update{
		ConceptID:       c.ID,
		Mastery:         level,
		CorrectStreak:   streak,
		ReviewCount:     c.ReviewCount + 1,
		PrevReviewCount: c.ReviewCount,
		LastReviewed:    now,
		NextReview:      s.nextReview(level, streak, correct, now),
		Success:         success,
	}

	if !c.CreatedAt.IsZero() && u.NextReview.Before(c.CreatedAt) {
		u.NextReview = c.CreatedAt
	}

	if level != c.Mastery {
		trigger := "promotion"
		if level < c.Mastery {
			trigger = "demotion"
		}
		u.Transition = &Transition{
			ConceptID:   c.ID,
			ConceptName: c.Name,
			From:        c.Mastery,
			To:          level,
			Trigger:     trigger,
		}
	}

	return u
}

// ApplySection advances a notes section in place using the same policy.
func (s *Scheduler) ApplySection(sec *concept.Section, correct bool, hintsUsed int, now time.Time) {
	sec.Mastery, sec.CorrectStreak = s.step(sec.Mastery, sec.CorrectStreak, correct && hintsUsed == 0)
	sec.TimesStudied++
	studied := now
	sec.LastStudied = &studied
}

func (s *Scheduler) step(level concept.Level, streak int, success bool) (concept.Level, int) {
	if success {
		return s.policy.Promote(level, streak+1)
	}
	return level.Down(s.policy.Floor()), 0
}

func (s *Scheduler) nextReview(level concept.Level, streak int, correct bool, now time.Time) time.Time {
	if s.policy.KeepDue(level, streak) {
		return now
	}
	days := IntervalDays(level)
	if !correct {
		days = FailureIntervalDays
	}
	return now.Add(time.Duration(days) * 24 * time.Hour)
}
