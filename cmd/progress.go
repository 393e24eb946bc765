package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/store"
	"github.com/abhisek/studyagent/internal/tutor"
	"github.com/abhisek/studyagent/internal/ui/components"
	"github.com/abhisek/studyagent/internal/ui/theme"
)

const barWidth = 40

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show mastery across the class",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.orch.Progress(cmd.Context(), classID(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Progress · "+classID(cmd)))
		fmt.Fprintf(out, "%d concepts, %d due\n\n", p.Total, p.Due)
		if p.Total == 0 {
			return nil
		}

		fmt.Fprintln(out, components.LevelBar(p.Histogram, barWidth))
		for _, l := range concept.AllLevels() {
			fmt.Fprintf(out, "  %s %3d\n", theme.Level(l).Width(12).Render(l.String()), p.Count(l))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, components.NewBar("Average", p.AverageMastery/float64(concept.LevelMastered), false, barWidth).View()+
			fmt.Sprintf("  %.2f / %d", p.AverageMastery, concept.LevelMastered))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <concept-id>",
	Short: "Show recent review sessions for a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		sessions, err := e.orch.History(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No reviews yet.")
			return nil
		}

		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			result := theme.Correct.Render("✓")
			if !s.Correct {
				result = theme.Incorrect.Render("✗")
			}
			rows = append(rows, []string{
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				s.SessionType,
				result,
				strconv.Itoa(s.HintsUsed),
				truncate(s.Question, 48),
			})
		}
		fmt.Fprintln(out, components.Table([]string{"When", "Type", "OK", "Hints", "Question"}, rows))

		if verbose {
			for _, s := range sessions {
				printSessionDetail(cmd, s)
			}
		}
		return nil
	},
}

var weaknessesCmd = &cobra.Command{
	Use:   "weaknesses <concept-id>",
	Short: "Show recurring weak areas for a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ws, err := e.orch.Weaknesses(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(ws) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No weaknesses recorded.")
			return nil
		}

		rows := make([][]string, 0, len(ws))
		for _, w := range ws {
			rows = append(rows, []string{
				w.Area,
				strconv.Itoa(w.Severity),
				strconv.Itoa(w.TimesEncountered),
				w.LastEncountered.Local().Format("2006-01-02"),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.Table([]string{"Area", "Severity", "Seen", "Last"}, rows))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Number of sessions to show")
	historyCmd.Flags().BoolP("verbose", "v", false, "Show answers, feedback and conversation transcripts")
}

func printSessionDetail(cmd *cobra.Command, s store.ReviewSession) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n── %s %s ──\n", s.Timestamp.Local().Format("2006-01-02 15:04"), s.SessionType)
	if s.SessionType == store.SessionTypeConversation {
		t, err := tutor.UnmarshalTranscript(s.ConversationData)
		if err != nil {
			fmt.Fprintln(out, theme.Dim.Render("(transcript unreadable)"))
			return
		}
		fmt.Fprintln(out, t.String())
		return
	}
	fmt.Fprintln(out, theme.Question.Render(s.Question))
	fmt.Fprintln(out, "Answer:   "+s.UserAnswer)
	if s.Feedback != "" {
		fmt.Fprintln(out, "Feedback: "+s.Feedback)
	}
}
