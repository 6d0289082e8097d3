package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/spf13/cobra"
)

// QuestionsCmd returns the questions command
func QuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the sample questionnaire",
		Long:  "Print the sample questionnaire that projects can be created from",
		Args:  cobra.NoArgs,
		RunE:  runQuestions,
	}

	cmd.Flags().StringP("file", "f", "", "Questionnaire file (defaults to DILIGENCE_SAMPLE_QUESTIONS_PATH)")
	cmd.Flags().Bool("json", false, "Print as JSON")

	return cmd
}

func runQuestions(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = os.Getenv("DILIGENCE_SAMPLE_QUESTIONS_PATH")
	}
	if path == "" {
		path = "data/sample_questions.yaml"
	}

	q, err := questionnaire.Load(path)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return printJSON(cmd.OutOrStdout(), q)
	}
	return printQuestionnaire(cmd.OutOrStdout(), q)
}

func printQuestionnaire(out io.Writer, q *questionnaire.Questionnaire) error {
	for i, section := range q.Sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", section.Name)
		for _, question := range section.Questions {
			if _, err := fmt.Fprintf(out, "  %-10s %s\n", question.ID, question.Text); err != nil {
				return err
			}
		}
	}
	return nil
}
