package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyagent/internal/concept"
)

var rootCmd = &cobra.Command{
	Use:   "studyagent",
	Short: "Spaced-repetition study agent",
	Long: `studyagent turns your notes into concepts, quizzes you on the ones that are due,
grades your answers, tutors you through mistakes and schedules the next review.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyagent/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path or Postgres DSN (overrides config and STUDYAGENT_DB)")
	rootCmd.PersistentFlags().String("class", concept.DefaultClassID, "Class the concepts belong to")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(addSectionsCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(weaknessesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func classID(cmd *cobra.Command) string {
	c, _ := cmd.Flags().GetString("class")
	return c
}
