package openai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrorPrefix marks gateway output that carries a failure instead of model text
const ErrorPrefix = "ERROR: "

// DefaultMaxTokens caps completion length when no limit is configured
const DefaultMaxTokens = 4096

// ChatAPI performs a single chat completion for one user prompt
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, prompt string, temperature float32) (string, error)
}

// ChatAdapter implements ChatAPI with a fixed model and token ceiling
type ChatAdapter struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewChatAdapter(client *openai.Client, model string, maxTokens int) *ChatAdapter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ChatAdapter{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// CreateChatCompletion sends the prompt as a single user message
func (a *ChatAdapter) CreateChatCompletion(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

type GatewayConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// MaxConcurrency bounds in-flight completions across the process
	MaxConcurrency int64
	// RateLimit is the sustained requests per second; zero disables throttling
	RateLimit float64
}

// Gateway is the long-lived LLM client shared by every answer generation.
// Complete never fails: errors come back as text starting with ErrorPrefix,
// so callers handle model output and failures the same way.
type Gateway struct {
	api     ChatAPI
	slots   *semaphore.Weighted
	limiter *rate.Limiter
}

func NewGateway(cfg GatewayConfig) *Gateway {
	api := NewChatAdapter(NewAPIClient(cfg.APIKey, cfg.BaseURL), cfg.Model, cfg.MaxTokens)
	return NewGatewayWithAPI(api, cfg.MaxConcurrency, cfg.RateLimit)
}

func NewGatewayWithAPI(api ChatAPI, maxConcurrency int64, rateLimit float64) *Gateway {
	g := &Gateway{api: api}
	if maxConcurrency > 0 {
		g.slots = semaphore.NewWeighted(maxConcurrency)
	}
	if rateLimit > 0 {
		burst := int(rateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}
	return g
}

// Complete makes exactly one completion attempt
func (g *Gateway) Complete(ctx context.Context, prompt string, temperature float32) string {
	start := time.Now()
	text, err := g.complete(ctx, prompt, temperature)
	if err != nil {
		log.Printf("llm: completion failed after %s (temperature %.1f): %v", time.Since(start).Round(time.Millisecond), temperature, err)
		return ErrorPrefix + err.Error()
	}
	return text
}

func (g *Gateway) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g.slots != nil {
		if err := g.slots.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("waiting for llm slot: %w", err)
		}
		defer g.slots.Release(1)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for llm rate limit: %w", err)
		}
	}

	return g.api.CreateChatCompletion(ctx, prompt, temperature)
}

// IsErrorText reports whether s is a captured gateway failure
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}
