package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/spf13/cobra"
)

// AnswerCmd returns the answer command
func AnswerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer <question-id>",
		Short: "Generate the answer for one question",
		Long:  "Generate and store the answer for one question. An existing answer is printed unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnswer,
	}

	addDatabaseFlags(cmd.Flags())

	return cmd
}

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := NewApp(ctx, cfg, appOptions(cmd.Flags()))
	if err != nil {
		return err
	}
	defer app.Close()

	return answerQuestion(ctx, app.Answers, args[0], cmd.OutOrStdout())
}

type QuestionAnswerer interface {
	Generate(ctx context.Context, questionID string) (*domain.Answer, error)
}

func answerQuestion(ctx context.Context, answerer QuestionAnswerer, questionID string, out io.Writer) error {
	answer, err := answerer.Generate(ctx, questionID)
	if err != nil {
		return err
	}
	return printJSON(out, answer)
}
