// Package theme holds the terminal styles used by the CLI.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyagent/internal/concept"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Question = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	Tutor = lipgloss.NewStyle().
		Foreground(Primary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)
)

// Grading
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Partial = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Card frames a question.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 1)

// levelStyles color mastery levels from cold to warm.
var levelStyles = [...]lipgloss.Style{
	concept.LevelUnknown:    lipgloss.NewStyle().Foreground(Error),
	concept.LevelLearning:   lipgloss.NewStyle().Foreground(Accent),
	concept.LevelFamiliar:   lipgloss.NewStyle().Foreground(Secondary),
	concept.LevelProficient: lipgloss.NewStyle().Foreground(Primary),
	concept.LevelMastered:   lipgloss.NewStyle().Foreground(Success),
}

// Level returns the style for a mastery level.
func Level(l concept.Level) lipgloss.Style {
	if !l.Valid() {
		return Dim
	}
	return levelStyles[l]
}
