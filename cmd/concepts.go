package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/session"
	"github.com/abhisek/studyagent/internal/ui/components"
	"github.com/abhisek/studyagent/internal/ui/theme"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		diff, _ := cmd.Flags().GetString("difficulty")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.orch.AddConcept(cmd.Context(), session.NewConcept{
			ClassID:    classID(cmd),
			Name:       args[0],
			Content:    content,
			Difficulty: concept.ParseDifficulty(diff),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", theme.Title.Render(c.Name), theme.Dim.Render(c.ID))
		return nil
	},
}

var addSectionsCmd = &cobra.Command{
	Use:   "add-sections <name>",
	Short: "Add a concept from notes split into sections by markdown headings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		sections := splitSections(content)
		if len(sections) == 0 {
			return fmt.Errorf("no sections found")
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		added, err := e.orch.AddConceptFromSections(cmd.Context(), classID(cmd), args[0], sections)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range added {
			fmt.Fprintf(out, "Added %s %s with %d sections\n",
				theme.Title.Render(c.Name), theme.Dim.Render(c.ID), len(c.Sections))
			for _, s := range c.Sections {
				fmt.Fprintf(out, "  %d. %s\n", s.Order+1, s.Title)
			}
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract concepts from lecture notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := readContent(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.orch.ExtractConcepts(cmd.Context(), classID(cmd), notes)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Failed {
			fmt.Fprintln(out, theme.Incorrect.Render("Could not extract concepts from these notes. Try again or add them by hand."))
			return nil
		}
		for _, c := range res.Created {
			fmt.Fprintf(out, "%s %s (%s)\n", theme.Correct.Render("+"), c.Name, c.Difficulty)
		}
		for _, name := range res.Skipped {
			fmt.Fprintf(out, "%s %s already exists\n", theme.Dim.Render("="), name)
		}
		fmt.Fprintf(out, "\n%d created, %d skipped\n", len(res.Created), len(res.Skipped))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List concepts in the class",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		cs, err := e.orch.Concepts(cmd.Context(), classID(cmd))
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No concepts yet. Add one with `studyagent add`.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), conceptTable(cs, time.Now()))
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List concepts due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		cs, err := e.orch.DueConcepts(cmd.Context(), classID(cmd))
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing due. Come back later.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), conceptTable(cs, time.Now()))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, addSectionsCmd, extractCmd} {
		c.Flags().StringP("file", "f", "", "Read content from file (- for stdin)")
	}
	addCmd.Flags().StringP("content", "c", "", "Concept notes")
	addCmd.Flags().StringP("difficulty", "d", "intermediate", "basic, intermediate, advanced or expert")
}

// readContent returns --content when set, otherwise the --file contents.
func readContent(cmd *cobra.Command) (string, error) {
	if f := cmd.Flags().Lookup("content"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	path, _ := cmd.Flags().GetString("file")
	switch path {
	case "":
		return "", fmt.Errorf("no content: use --file")
	case "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	return string(b), nil
}

// splitSections splits markdown notes at headings. Text before the first
// heading becomes an "Introduction" section; sections without body text
// are dropped.
func splitSections(text string) []session.SectionInput {
	var (
		out   []session.SectionInput
		title = "Introduction"
		body  []string
	)
	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			out = append(out, session.SectionInput{Title: title, Content: content})
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			flush()
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			if title == "" {
				title = fmt.Sprintf("Section %d", len(out)+1)
			}
			continue
		}
		body = append(body, line)
	}
	flush()
	return out
}

func conceptTable(cs []*concept.Concept, now time.Time) string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			c.Name,
			theme.Level(c.Mastery).Render(c.Mastery.String()),
			fmt.Sprintf("%d", c.CorrectStreak),
			fmt.Sprintf("%d", c.ReviewCount),
			reviewIn(c, now),
			c.ID,
		})
	}
	return components.Table([]string{"Concept", "Mastery", "Streak", "Reviews", "Next", "ID"}, rows)
}

// reviewIn describes when c is next due relative to now.
func reviewIn(c *concept.Concept, now time.Time) string {
	if c.IsDue(now) {
		if d := c.OverdueDays(now); d > 0 {
			return fmt.Sprintf("overdue %dd", d)
		}
		return "now"
	}
	hours := math.Ceil(c.NextReview.Sub(now).Hours())
	if hours < 24 {
		return fmt.Sprintf("in %dh", int(hours))
	}
	return fmt.Sprintf("in %dd", int(math.Ceil(hours/24)))
}
