package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const AppName = "Due Diligence Assistant"

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// OpenAI-compatible chat completion endpoint used for answer generation
	LLMAPIKey         string  `envconfig:"LLM_API_KEY"`
	LLMBaseURL        string  `envconfig:"LLM_BASE_URL" default:"https://integrate.api.nvidia.com/v1"`
	LLMModel          string  `envconfig:"LLM_MODEL" default:"z-ai/glm4.7"`
	LLMMaxTokens      int     `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	LLMMaxConcurrency int64   `envconfig:"LLM_MAX_CONCURRENCY" default:"4"`
	LLMRateLimit      float64 `envconfig:"LLM_RATE_LIMIT" default:"0"`

	AnswerTempA   float32 `envconfig:"ANSWER_TEMP_A" default:"0.7"`
	AnswerTempB   float32 `envconfig:"ANSWER_TEMP_B" default:"0.9"`
	MergeTemp     float32 `envconfig:"MERGE_TEMP" default:"0.3"`
	RetrievalTopK int     `envconfig:"RETRIEVAL_TOP_K" default:"8"`

	// Embeddings for query vectors and chunk backfill; falls back to the LLM key
	EmbeddingAPIKey       string        `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL      string        `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingModel        string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions   int           `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingPollInterval time.Duration `envconfig:"EMBEDDING_POLL_INTERVAL" default:"10s"`

	SampleQuestionsPath string `envconfig:"SAMPLE_QUESTIONS_PATH" default:"data/sample_questions.yaml"`

	// Optional static bearer token protecting the /api routes
	APIKey string `envconfig:"API_KEY"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// AnswerSettings holds the generation parameters handed to the answer service
type AnswerSettings struct {
	TempA         float32
	TempB         float32
	MergeTemp     float32
	RetrievalTopK int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DILIGENCE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.RetrievalTopK <= 0 {
		return nil, fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", cfg.RetrievalTopK)
	}
	if cfg.LLMMaxConcurrency < 2 {
		return nil, fmt.Errorf("LLM_MAX_CONCURRENCY must be at least 2, got %d", cfg.LLMMaxConcurrency)
	}

	return &cfg, nil
}


func (c *Config) HasLLM() bool {
	return c.LLMAPIKey != ""
}

func (c *Config) HasEmbeddings() bool {
	return c.EmbeddingKey() != ""
}

func (c *Config) HasAuth() bool {
	return c.APIKey != ""
}

// EmbeddingKey returns the embedding API key, defaulting to the LLM key
func (c *Config) EmbeddingKey() string {
	if c.EmbeddingAPIKey != "" {
		return c.EmbeddingAPIKey
	}
	return c.LLMAPIKey
}

func (c *Config) AnswerSettings() AnswerSettings {
	return AnswerSettings{
		TempA:         c.AnswerTempA,
		TempB:         c.AnswerTempB,
		MergeTemp:     c.MergeTemp,
		RetrievalTopK: c.RetrievalTopK,
	}
}
