package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/session"
	"github.com/abhisek/studyagent/internal/tutor"
	"github.com/abhisek/studyagent/internal/ui/theme"
)

var studyCmd = &cobra.Command{
	Use:   "study [concept-id]",
	Short: "Talk a concept through with the tutor",
	Long: `Start a tutoring conversation. The tutor asks a question and keeps probing with
follow-ups; ask it a question of your own any time. Type "done" to finish and
record the conversation. Without a concept ID the first due concept is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStudy,
}

func runStudy(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var conceptID string
	if len(args) == 1 {
		conceptID = args[0]
	} else {
		due, err := e.orch.DueConcepts(ctx, classID(cmd))
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Fprintln(out, "Nothing due. Pass a concept ID to study anyway.")
			return nil
		}
		conceptID = due[0].ID
	}

	st, err := e.orch.StartConversation(ctx, conceptID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "── %s ──\n", theme.Title.Render(st.ConceptName))
	fmt.Fprintln(out, theme.Card.Render(theme.Question.Render(st.Question.Text)))
	fmt.Fprintln(out, theme.Dim.Render(`Ask a question any time. Type "done" to finish.`))

	in := newPrompter(cmd.InOrStdin(), out)
	for {
		line, ok := in.ask("\n> ")
		if !ok || isQuit(line) {
			break
		}

		if tutor.IsStudentQuestion(line) {
			r, err := e.orch.AskTutor(ctx, st, line)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, theme.Tutor.Render(r.Answer))
			if r.FollowUp != "" {
				fmt.Fprintln(out, theme.Question.Render(r.FollowUp))
			}
			continue
		}

		r, err := e.orch.ContinueConversation(ctx, st, line)
		if errors.Is(err, session.ErrValidation) {
			fmt.Fprintln(out, theme.Dim.Render(err.Error()))
			continue
		}
		if err != nil {
			return err
		}
		printTurn(out, r)
	}

	res, err := e.orch.EndConversation(ctx, st)
	if err != nil {
		return err
	}
	printEnd(out, res)
	return nil
}

func printTurn(out io.Writer, r tutor.ContinueResult) {
	switch r.Label {
	case evaluation.LabelCorrect:
		fmt.Fprintln(out, theme.Correct.Render("✓"))
	case evaluation.LabelPartial:
		fmt.Fprintln(out, theme.Partial.Render("~"))
	default:
		fmt.Fprintln(out, theme.Incorrect.Render("✗"))
	}
	fmt.Fprintln(out, theme.Tutor.Render(r.GuidingResponse))
	if len(r.Weaknesses) > 0 {
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Worth revisiting: %v", r.Weaknesses)))
	}
}

func printEnd(out io.Writer, res tutor.EndResult) {
	fmt.Fprintln(out)
	if !res.Recorded {
		fmt.Fprintln(out, "Nothing answered, nothing recorded.")
		return
	}
	fmt.Fprintf(out, "── Conversation finished: %d replies ──\n", res.TotalAttempts)
	if res.RemediationNeeded {
		fmt.Fprintln(out, theme.Partial.Render("This concept needs more work; it stays in the review queue."))
	}
	if res.Update != nil {
		if t := res.Update.Transition; t != nil {
			fmt.Fprintf(out, "%s: %s → %s\n", t.ConceptName,
				theme.Level(t.From).Render(t.From.String()), theme.Level(t.To).Render(t.To.String()))
		}
		fmt.Fprintln(out, theme.Dim.Render("Next review: "+res.Update.NextReview.Local().Format("Mon Jan 2 15:04")))
	}
}
