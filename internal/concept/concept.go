package concept

import (
	"fmt"
	"strings"
	"time"
)

// DefaultClassID scopes concepts that were added without a class.
const DefaultClassID = "default"

// Level is a concept's position on the mastery ladder.
type Level int

const (
	LevelUnknown Level = iota
	LevelLearning
	LevelFamiliar
	LevelProficient
	LevelMastered
)

// AllLevels returns every level in ascending order.
func AllLevels() []Level {
	return []Level{
		LevelUnknown,
		LevelLearning,
		LevelFamiliar,
		LevelProficient,
		LevelMastered,
	}
}

func (l Level) String() string {
	switch l {
	case LevelUnknown:
		return "UNKNOWN"
	case LevelLearning:
		return "LEARNING"
	case LevelFamiliar:
		return "FAMILIAR"
	case LevelProficient:
		return "PROFICIENT"
	case LevelMastered:
		return "MASTERED"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelUnknown && l <= LevelMastered
}

// Up returns the next level, saturating at MASTERED.
func (l Level) Up() Level {
	if l >= LevelMastered {
		return LevelMastered
	}
	return l + 1
}

// Down returns the previous level, never going below floor.
func (l Level) Down(floor Level) Level {
	if l <= floor {
		return l
	}
	return l - 1
}

// ParseLevel accepts either the level name (case-insensitive) or its
// integer form.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	for _, l := range AllLevels() {
		if s == l.String() || s == fmt.Sprint(int(l)) {
			return l, nil
		}
	}
	return LevelUnknown, fmt.Errorf("unknown mastery level %q", s)
}

// Difficulty is the target challenge of a question.
type Difficulty int

const (
	DifficultyBasic Difficulty = iota + 1
	DifficultyIntermediate
	DifficultyAdvanced
	DifficultyExpert
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBasic:
		return "BASIC"
	case DifficultyIntermediate:
		return "INTERMEDIATE"
	case DifficultyAdvanced:
		return "ADVANCED"
	case DifficultyExpert:
		return "EXPERT"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty maps a free-form label ("beginner", "advanced", "3")
// to a Difficulty. Unrecognized labels map to BASIC.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate", "medium", "2":
		return DifficultyIntermediate
	case "advanced", "hard", "3":
		return DifficultyAdvanced
	case "expert", "4":
		return DifficultyExpert
	default:
		return DifficultyBasic
	}
}

// Section is one ordered slice of a concept's notes, tracked separately so
// questions can walk through long material piece by piece.
type Section struct {
	ID            string
	Title         string
	Content       string
	Order         int
	Mastery       Level
	CorrectStreak int
	TimesStudied  int
	LastStudied   *time.Time
}

// Concept is a discrete unit of knowledge under review.
type Concept struct {
	ID             string
	ClassID        string
	Name           string
	Content        string
	Mastery        Level
	ReviewCount    int
	CorrectStreak  int
	Difficulty     Difficulty
	LastReviewed   *time.Time
	NextReview     time.Time
	CreatedAt      time.Time
	Sections       []Section
	CurrentSection int
}

// HasSections reports whether the concept carries section-level notes.
func (c *Concept) HasSections() bool {
	return len(c.Sections) > 0
}

// IsDue reports whether the concept should be offered for review at now.
func (c *Concept) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}

// OverdueDays returns how many whole days past due the concept is.
// Returns 0 when not yet due.
func (c *Concept) OverdueDays(now time.Time) int {
	if !c.IsDue(now) {
		return 0
	}
	return int(now.Sub(c.NextReview).Hours() / 24)
}
