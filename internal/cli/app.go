// Package cli holds the diligenced commands and the wiring they share.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/database"
	"github.com/cloo-solutions/diligence/internal/openai"
	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/cloo-solutions/diligence/internal/repository"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/cloo-solutions/diligence/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the wired service graph behind every command
type App struct {
	Config     *config.Config
	Pool       *pgxpool.Pool
	Answers    *service.AnswerService
	Projects   *service.ProjectService
	Embeddings *service.EmbeddingService
	Documents  *service.DocumentService
	Chunks     *repository.ChunkRepository

	// DocumentIndex moves documents through indexing as their chunks embed
	DocumentIndex *repository.DocumentRepository

	shutdownTelemetry func()
}

type AppOptions struct {
	Migrate       bool
	MigrationsDir string
}

// NewApp connects to the database and builds the services from cfg
func NewApp(ctx context.Context, cfg *config.Config, opts AppOptions) (*App, error) {
	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: tracesSampleRate(cfg.Environment),
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		shutdownTelemetry = func() {}
	}

	if opts.Migrate {
		if err := database.Migrate(cfg.DatabaseURL, opts.MigrationsDir); err != nil {
			shutdownTelemetry()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolConfig{})
	if err != nil {
		shutdownTelemetry()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	samples, err := questionnaire.Load(cfg.SampleQuestionsPath)
	if err != nil {
		pool.Close()
		shutdownTelemetry()
		return nil, fmt.Errorf("failed to load sample questions: %w", err)
	}
	log.Printf("loaded %d sample questions from %s", samples.Count(), cfg.SampleQuestionsPath)

	if !cfg.HasLLM() {
		log.Println("warning: LLM_API_KEY is not set, answer generation will store error text")
	}

	projectRepo := repository.NewProjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.EmbeddingKey(),
		BaseURL:             cfg.EmbeddingBaseURL,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
	gateway := openai.NewGateway(openai.GatewayConfig{
		APIKey:         cfg.LLMAPIKey,
		BaseURL:        cfg.LLMBaseURL,
		Model:          cfg.LLMModel,
		MaxTokens:      cfg.LLMMaxTokens,
		MaxConcurrency: cfg.LLMMaxConcurrency,
		RateLimit:      cfg.LLMRateLimit,
	})

	app := &App{
		Config:            cfg,
		Pool:              pool,
		Chunks:            chunkRepo,
		DocumentIndex:     documentRepo,
		Documents:         service.NewDocumentService(documentRepo),
		shutdownTelemetry: shutdownTelemetry,
		Answers: service.NewAnswerService(
			answerRepo,
			questionRepo,
			projectRepo,
			service.NewVectorRetriever(embeddingClient, chunkRepo),
			gateway,
			cfg.AnswerSettings(),
		),
		Projects: service.NewProjectService(
			projectRepo,
			questionRepo,
			answerRepo,
			repository.NewTxRunner(pool),
			samples,
		),
	}
	if cfg.HasEmbeddings() {
		app.Embeddings = service.NewEmbeddingService(embeddingClient, chunkRepo)
	}
	return app, nil
}

func (a *App) Close() {
	a.Pool.Close()
	a.shutdownTelemetry()
}

// tracesSampleRate samples everything in development and 10% elsewhere
func tracesSampleRate(environment string) float64 {
	if environment == "" || environment == "development" {
		return 1.0
	}
	return 0.1
}
