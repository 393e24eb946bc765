package mastery

import (
	"fmt"

	"github.com/abhisek/studyagent/internal/concept"
)

// Policy decides how a streak of successes turns into a promotion and how
// far a failure may demote.
type Policy interface {
	// Name identifies the policy in configuration.
	Name() string

	// Promote is called after a success, with streak already incremented.
	// It returns the resulting level and streak.
	Promote(level concept.Level, streak int) (concept.Level, int)

	// Floor is the lowest level a failure can demote to.
	Floor() concept.Level

	// KeepDue reports whether a concept at the given level and streak
	// should stay immediately due instead of waiting for its interval.
	KeepDue(level concept.Level, streak int) bool
}

const (
	PolicyStreak = "streak"
	PolicyEager  = "eager"
)

// DefaultStreakThreshold is the number of consecutive clean successes
// needed to promote under StreakPolicy.
const DefaultStreakThreshold = 3

// StreakPolicy promotes after Threshold consecutive clean successes and
// never demotes below LEARNING.
type StreakPolicy struct {
	Threshold int
}

func (p StreakPolicy) Name() string { return PolicyStreak }

func (p StreakPolicy) Promote(level concept.Level, streak int) (concept.Level, int) {
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultStreakThreshold
	}
	if streak >= threshold && level < concept.LevelMastered {
		return level.Up(), 0
	}
	return level, streak
}

func (p StreakPolicy) Floor() concept.Level { return concept.LevelLearning }

func (p StreakPolicy) KeepDue(concept.Level, int) bool { return false }

// EagerPolicy promotes out of UNKNOWN on the first success and after
// Threshold successes at every other level. Failures can demote all the way
// to UNKNOWN, and UNKNOWN concepts stay due until they build a streak.
type EagerPolicy struct {
	Threshold int
}

// eagerKeepDueStreak is the streak below which an UNKNOWN concept remains
// immediately due.
const eagerKeepDueStreak = 3

func (p EagerPolicy) Name() string { return PolicyEager }

func (p EagerPolicy) Promote(level concept.Level, streak int) (concept.Level, int) {
	if level >= concept.LevelMastered {
		return level, streak
	}
	if level == concept.LevelUnknown {
		return concept.LevelLearning, 0
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = 2
	}
	if streak >= threshold {
		return level.Up(), 0
	}
	return level, streak
}

func (p EagerPolicy) Floor() concept.Level { return concept.LevelUnknown }

func (p EagerPolicy) KeepDue(level concept.Level, streak int) bool {
	return level == concept.LevelUnknown && streak < eagerKeepDueStreak
}

// PolicyByName returns the named policy. threshold <= 0 selects the
// policy's default.
func PolicyByName(name string, threshold int) (Policy, error) {
	switch name {
	case "", PolicyStreak:
		return StreakPolicy{Threshold: threshold}, nil
	case PolicyEager:
		return EagerPolicy{Threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("unknown promotion policy %q", name)
	}
}
