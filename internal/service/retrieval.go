package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

// ChunkRetriever returns the k chunks most relevant to a query, best first.
// An empty result means nothing has been indexed yet.
type ChunkRetriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

// ChunkSearchRepository defines the vector-search side of chunk storage
type ChunkSearchRepository interface {
	HasEmbeddedChunks(ctx context.Context) (bool, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.RetrievedChunk, error)
}

// VectorRetriever embeds the query and runs a nearest-neighbour search
type VectorRetriever struct {
	embedding EmbeddingClient
	repo      ChunkSearchRepository
}

func NewVectorRetriever(embedding EmbeddingClient, repo ChunkSearchRepository) *VectorRetriever {
	return &VectorRetriever{embedding: embedding, repo: repo}
}

// Search implements ChunkRetriever. Chunks failing validation are dropped.
func (r *VectorRetriever) Search(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	// skip the embedding call entirely while the index is empty
	indexed, err := r.repo.HasEmbeddedChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check chunk index: %w", err)
	}
	if !indexed {
		return []domain.RetrievedChunk{}, nil
	}

	vec, err := r.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.repo.SearchSimilar(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	chunks := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := domain.NormalizeRetrievedChunk(hit)
		if err != nil {
			log.Printf("retrieval: dropping chunk: %v", err)
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
