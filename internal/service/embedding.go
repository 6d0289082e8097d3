package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkEmbeddingRepository defines the chunk lookups the embedding backfill needs
type ChunkEmbeddingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.DocumentChunk, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingService embeds stored document chunks so vector search can find them
type EmbeddingService struct {
	client EmbeddingClient
	repo   ChunkEmbeddingRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo ChunkEmbeddingRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// EmbedChunk generates and stores the embedding of one chunk.
// This method is called by the background worker
func (s *EmbeddingService) EmbedChunk(ctx context.Context, chunkID string) error {
	chunk, err := s.repo.GetByID(ctx, chunkID)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(chunk.Content)
	if text == "" {
		return fmt.Errorf("chunk %s has no content to embed", chunkID)
	}

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, chunkID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}
