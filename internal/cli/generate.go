package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/spf13/cobra"
)

// GenerateCmd returns the generate command
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <project-id>",
		Short: "Answer every question of a project",
		Long: `Answer every question of a project in order and mark it READY.

With --stream, progress events are printed as JSON lines while the batch runs,
ending with a single complete event. Otherwise the summary is printed once.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().Bool("stream", false, "Print progress events as JSON lines")
	addDatabaseFlags(cmd.Flags())

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
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

	stream, _ := cmd.Flags().GetBool("stream")
	return generateProject(ctx, app.Answers, args[0], stream, cmd.OutOrStdout())
}

// ProjectGenerator is the part of the answer service the generate command drives
type ProjectGenerator interface {
	GenerateProject(ctx context.Context, projectID string) (*service.ProjectGenerationResult, error)
	StreamProject(ctx context.Context, projectID string) (<-chan service.ProgressEvent, error)
}

func generateProject(ctx context.Context, gen ProjectGenerator, projectID string, stream bool, out io.Writer) error {
	if !stream {
		result, err := gen.GenerateProject(ctx, projectID)
		if err != nil {
			return err
		}
		return printJSON(out, result)
	}

	events, err := gen.StreamProject(ctx, projectID)
	if err != nil {
		return err
	}
	return writeJSONLines(out, events)
}

// writeJSONLines prints one event per line until the channel closes.
// A stream that ends without a complete event was interrupted.
func writeJSONLines(out io.Writer, events <-chan service.ProgressEvent) error {
	enc := json.NewEncoder(out)
	completed := false
	for event := range events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		if event.Type == service.EventTypeComplete {
			completed = true
		}
	}
	if !completed {
		return fmt.Errorf("generation stopped before completion")
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
