package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of attempts for a chunk before it is marked failed
	MaxRetries = 3

	claimBatchSize = 100
)

// ChunkQueueRepository defines the interface for the chunk embedding queue
type ChunkQueueRepository interface {
	// ClaimPending retrieves and locks chunks still waiting for an embedding
	ClaimPending(ctx context.Context, limit int) ([]*domain.DocumentChunk, error)

	// UpdateEmbeddingStatus updates the embedding status of a chunk
	UpdateEmbeddingStatus(ctx context.Context, chunkID string, status domain.ChunkEmbeddingStatus, errMsg string) error

	// IncrementRetries increments the retry count for a chunk
	IncrementRetries(ctx context.Context, chunkID string) error
}

// ChunkEmbedder generates and stores the embedding of one chunk
type ChunkEmbedder interface {
	EmbedChunk(ctx context.Context, chunkID string) error
}

// DocumentIndexRepository derives a document's status from its chunks
type DocumentIndexRepository interface {
	SyncIndexStatus(ctx context.Context, documentID string) (domain.DocumentStatus, error)
}

// EmbeddingWorker backfills embeddings for chunks written without one and
// keeps the status of their documents current.
type EmbeddingWorker struct {
	repo     ChunkQueueRepository
	embedder ChunkEmbedder
	docs     DocumentIndexRepository
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo ChunkQueueRepository, embedder ChunkEmbedder, docs DocumentIndexRepository) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:     repo,
		embedder: embedder,
		docs:     docs,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	chunks, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending chunks: %w", err)
	}

	if len(chunks) == 0 {
		return nil
	}

	ctx, span := telemetry.StartTransaction(ctx, "EmbeddingWorker.ProcessJobs", "job.embedding")
	defer span.End()

	log.Printf("embedding: processing %d pending chunks", len(chunks))

	var documentIDs []string
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.processChunk(ctx, chunk); err != nil {
			log.Printf("embedding: chunk %s: %v", chunk.ID, err)
		}
		if !seen[chunk.DocumentID] {
			seen[chunk.DocumentID] = true
			documentIDs = append(documentIDs, chunk.DocumentID)
		}
	}

	w.syncDocuments(ctx, documentIDs)
	return nil
}

// syncDocuments refreshes each touched document. A document settles once
// none of its chunks are pending or processing.
func (w *EmbeddingWorker) syncDocuments(ctx context.Context, documentIDs []string) {
	for _, id := range documentIDs {
		status, err := w.docs.SyncIndexStatus(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				continue
			}
			log.Printf("embedding: failed to update document %s: %v", id, err)
			continue
		}
		if status.Settled() {
			log.Printf("embedding: document %s is %s", id, status)
		}
		if status == domain.DocumentStatusFailed {
			telemetry.CaptureMessage(ctx, fmt.Sprintf("embedding: document %s failed to index", id))
		}
	}
}

func (w *EmbeddingWorker) processChunk(ctx context.Context, chunk *domain.DocumentChunk) error {
	if err := w.embedder.EmbedChunk(ctx, chunk.ID); err != nil {
		return w.handleFailure(ctx, chunk, err)
	}

	if err := w.repo.UpdateEmbeddingStatus(ctx, chunk.ID, domain.ChunkEmbeddingStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark chunk completed: %w", err)
	}
	return nil
}

// handleFailure records a failed attempt and gives up after MaxRetries
func (w *EmbeddingWorker) handleFailure(ctx context.Context, chunk *domain.DocumentChunk, embedErr error) error {
	log.Printf("embedding: chunk %s failed: %v", chunk.ID, embedErr)

	if err := w.repo.IncrementRetries(ctx, chunk.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	attempt := chunk.Retries + 1
	if attempt >= MaxRetries {
		log.Printf("embedding: chunk %s exceeded max retries (%d), marking as failed", chunk.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", embedErr)
		telemetry.CaptureMessage(ctx, fmt.Sprintf("embedding: chunk %s failed permanently", chunk.ID))
		if err := w.repo.UpdateEmbeddingStatus(ctx, chunk.ID, domain.ChunkEmbeddingStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to mark chunk failed: %w", err)
		}
		return nil
	}

	errMsg := fmt.Sprintf("retry %d: %v", attempt, embedErr)
	if err := w.repo.UpdateEmbeddingStatus(ctx, chunk.ID, domain.ChunkEmbeddingStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset chunk to pending: %w", err)
	}
	return nil
}
