package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/diligence/internal/api/handlers"
	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/jobs"
	"github.com/cloo-solutions/diligence/internal/server"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API and the chunk embedding worker",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides DILIGENCE_PORT)")
	addDatabaseFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	app, err := NewApp(ctx, cfg, appOptions(cmd.Flags()))
	if err != nil {
		return err
	}
	defer app.Close()

	var embeddingWorker *jobs.Worker
	if app.Embeddings != nil {
		processor := jobs.NewEmbeddingWorker(app.Chunks, app.Embeddings, app.DocumentIndex)
		embeddingWorker = jobs.NewWorker("embedding", processor, cfg.EmbeddingPollInterval)
		go embeddingWorker.Start(ctx)
	} else {
		log.Println("embedding worker disabled: no embedding API key configured")
	}

	routerCfg := server.RouterConfig{
		AppName:         config.AppName,
		ProjectHandler:  handlers.NewProjectHandler(app.Projects, app.Answers),
		AnswerHandler:   handlers.NewAnswerHandler(app.Answers),
		DocumentHandler: handlers.NewDocumentHandler(app.Documents),
	}
	if cfg.HasAuth() {
		routerCfg.AuthValidator = service.NewStaticKeyAuth(cfg.APIKey)
	} else {
		log.Println("warning: API_KEY is not set, /api routes are unauthenticated")
	}

	// no write timeout: generate-stream responses last as long as the batch.
	// Requests inherit ctx so running batches stop on shutdown.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
