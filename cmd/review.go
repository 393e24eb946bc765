package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/session"
	"github.com/abhisek/studyagent/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Answer questions on due concepts",
	Long: `Work through due concepts one question at a time. Each answer is graded,
recorded and used to schedule the next review. Type "quit" to stop.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("concept", "", "Review one concept by ID, due or not")
	reviewCmd.Flags().IntP("count", "n", 10, "Maximum number of questions")
}

func runReview(cmd *cobra.Command, args []string) error {
	conceptID, _ := cmd.Flags().GetString("concept")
	count, _ := cmd.Flags().GetInt("count")

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := newPrompter(cmd.InOrStdin(), out)
	sum := session.NewSummary(time.Now())

	for i := 1; i <= count; i++ {
		var pick *session.Pick
		if conceptID != "" {
			pick, err = e.orch.QuestionFor(ctx, conceptID)
		} else {
			pick, err = e.orch.StartSession(ctx, classID(cmd))
		}
		if err != nil {
			return err
		}
		if pick == nil {
			fmt.Fprintln(out, "Nothing due. Come back later.")
			break
		}

		fmt.Fprintf(out, "── Question %d · %s · %s ──\n", i,
			pick.Concept.Name, theme.Level(pick.Concept.Mastery).Render(pick.Concept.Mastery.String()))
		fmt.Fprintln(out, theme.Card.Render(theme.Question.Render(pick.Question.Text)))

		answer, ok := in.ask("\nYour answer: ")
		if !ok || isQuit(answer) {
			break
		}

		res, err := e.orch.SubmitAnswer(ctx, session.SubmitRequest{
			ConceptID: pick.Concept.ID,
			Question:  pick.Question,
			Answer:    answer,
		})
		if err != nil {
			return err
		}
		printSubmit(out, res)
		sum.Add(res)
	}

	printSummary(out, sum)
	return nil
}

func printSubmit(out io.Writer, res *session.SubmitResult) {
	switch {
	case res.Label == evaluation.LabelPartial:
		fmt.Fprintln(out, theme.Partial.Render("~ Partially correct"))
	case res.Correct:
		fmt.Fprintln(out, theme.Correct.Render("✓ Correct"))
	default:
		fmt.Fprintln(out, theme.Incorrect.Render("✗ Not quite"))
	}
	if res.Score >= 0 {
		fmt.Fprintf(out, "Score: %d/100\n", res.Score)
	}
	if res.Feedback != "" {
		fmt.Fprintln(out, res.Feedback)
	}
	for _, h := range res.Hints {
		fmt.Fprintln(out, theme.Hint.Render("Hint: "+h))
	}
	if res.Fallback {
		fmt.Fprintln(out, theme.Dim.Render("(graded offline: the grader was unavailable)"))
	}

	if t := res.Update.Transition; t != nil {
		fmt.Fprintf(out, "%s: %s → %s\n", t.ConceptName,
			theme.Level(t.From).Render(t.From.String()), theme.Level(t.To).Render(t.To.String()))
	}
	fmt.Fprintln(out, theme.Dim.Render("Next review: "+res.Update.NextReview.Local().Format("Mon Jan 2 15:04")))
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, sum *session.Summary) {
	if sum.Answered == 0 {
		return
	}
	fmt.Fprintf(out, "── Summary: %d/%d correct (%.0f%%), %d promoted, %s ──\n",
		sum.Correct, sum.Answered, sum.Accuracy()*100, sum.Promotions(),
		time.Since(sum.Started).Round(time.Second))
}
