// Package components renders the small terminal widgets used by the CLI.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/ui/theme"
)

// minBarWidth is the narrowest bar drawn regardless of the label.
const minBarWidth = 4

// Bar is a horizontal percentage bar.
type Bar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewBar creates a bar.
func NewBar(label string, percent float64, showPercent bool, width int) Bar {
	return Bar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the bar.
func (b Bar) View() string {
	var result string
	if b.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	suffix := ""
	if b.ShowPercent {
		suffix = fmt.Sprintf("  %3d%%", int(clamp(b.Percent)*100))
	}

	width := b.Width - lipgloss.Width(result) - len(suffix)
	if width < minBarWidth {
		width = minBarWidth
	}
	filled := int(float64(width) * clamp(b.Percent))

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width-filled))
	if suffix != "" {
		result += theme.Dim.Render(suffix)
	}
	return result
}

// LevelBar renders one segment per mastery level, sized by its share of
// the histogram and colored by level. An empty histogram renders an empty
// bar.
func LevelBar(hist map[concept.Level]int, width int) string {
	if width < minBarWidth {
		width = minBarWidth
	}
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width))
	}

	var sb strings.Builder
	used := 0
	levels := concept.AllLevels()
	for i, l := range levels {
		n := hist[l]
		if n == 0 {
			continue
		}
		seg := width * n / total
		if i == len(levels)-1 || used+seg > width {
			seg = width - used
		}
		sb.WriteString(lipgloss.NewStyle().
			Background(theme.Level(l).GetForeground()).
			Render(strings.Repeat(" ", seg)))
		used += seg
	}
	if used < width {
		// Rounding leftovers go to the highest populated level.
		for i := len(levels) - 1; i >= 0; i-- {
			if hist[levels[i]] > 0 {
				sb.WriteString(lipgloss.NewStyle().
					Background(theme.Level(levels[i]).GetForeground()).
					Render(strings.Repeat(" ", width-used)))
				break
			}
		}
	}
	return sb.String()
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
