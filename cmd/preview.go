package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview <concept-id>",
	Short: "Preview generated questions and grading for a concept (nothing recorded)",
	Long: `Generate and interactively answer questions for one concept.

This is a stateless tool: answers are graded but no mastery, review session or
event is recorded. Useful for checking question and grading quality.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntP("count", "n", 3, "Number of questions to generate")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	c, err := e.store.Repo().GetConcept(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Concept: %s (%s, %s)\n\n", c.Name, c.Difficulty, c.Mastery)

	in := newPrompter(cmd.InOrStdin(), out)
	correct := 0
	for i := 1; i <= count; i++ {
		q := e.questions.Generate(ctx, c)

		fmt.Fprintf(out, "── Question %d/%d [%s, %s] ──\n", i, count, q.Type, q.Difficulty)
		if q.IsSectionQuestion() {
			fmt.Fprintln(out, theme.Dim.Render("Section: "+c.Sections[q.SectionIndex].Title))
		}
		fmt.Fprintln(out, theme.Question.Render(q.Text))
		if q.Fallback {
			fmt.Fprintln(out, theme.Dim.Render("(template question: the model was unavailable)"))
		}

		answer, ok := in.ask("\nYour answer: ")
		if !ok || isQuit(answer) {
			break
		}

		res := e.grader.Evaluate(ctx, q, answer)
		if res.Correct {
			correct++
		}
		fmt.Fprintf(out, "%s  %s\n", res.Label, res.Feedback)
		if q.ExpectedAnswer != "" {
			fmt.Fprintln(out, theme.Hint.Render("Expected: "+q.ExpectedAnswer))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, count)
	return nil
}
