package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const chunkColumns = `id, document_id, page, chunk_index, content, embedding_status, retries, error, created_at`

// ChunkRepository reads document chunks written by the ingestion pipeline,
// serves vector search over them and tracks the embedding backfill.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// HasEmbeddedChunks reports whether any chunk is searchable yet
func (r *ChunkRepository) HasEmbeddedChunks(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM document_chunks WHERE embedding IS NOT NULL)`,
	).Scan(&exists)
	return exists, err
}

// SearchSimilar returns the chunks closest to the embedding by cosine distance
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.RetrievedChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.content, c.document_id, d.filename, c.page, c.chunk_index,
		        c.embedding <=> $1 AS distance
		 FROM document_chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.embedding IS NOT NULL
		 ORDER BY c.embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]domain.RetrievedChunk, 0, limit)
	for rows.Next() {
		var c domain.RetrievedChunk
		if err := rows.Scan(&c.ID, &c.Text, &c.Metadata.DocID, &c.Metadata.DocName, &c.Metadata.Page, &c.Metadata.ChunkIndex, &c.Distance); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.DocumentChunk, error) {
	c, err := scanChunk(r.db.QueryRow(ctx,
		`SELECT `+chunkColumns+` FROM document_chunks WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE document_chunks SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// ClaimPending moves up to limit pending chunks to processing and returns them.
// Concurrent workers never claim the same chunk.
func (r *ChunkRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.DocumentChunk, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM document_chunks
			 WHERE embedding_status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE document_chunks
		 SET embedding_status = $3
		 FROM cte
		 WHERE document_chunks.id = cte.id
		 RETURNING document_chunks.id, document_chunks.document_id, document_chunks.page, document_chunks.chunk_index,
		           document_chunks.content, document_chunks.embedding_status, document_chunks.retries,
		           document_chunks.error, document_chunks.created_at`,
		domain.ChunkEmbeddingStatusPending, limit, domain.ChunkEmbeddingStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]*domain.DocumentChunk, 0)
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepository) UpdateEmbeddingStatus(ctx context.Context, id string, status domain.ChunkEmbeddingStatus, errMsg string) error {
	if !domain.IsValidChunkEmbeddingStatus(status) {
		return domain.ErrInvalidChunkEmbedState
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE document_chunks SET embedding_status = $1, error = $2 WHERE id = $3`,
		status, nullableString(errMsg), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

func (r *ChunkRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE document_chunks SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

func scanChunk(row pgx.Row) (*domain.DocumentChunk, error) {
	var c domain.DocumentChunk
	var errMsg pgtype.Text
	if err := row.Scan(&c.ID, &c.DocumentID, &c.Page, &c.ChunkIndex, &c.Content, &c.Status, &c.Retries, &errMsg, &c.CreatedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		c.Error = errMsg.String
	}
	return &c, nil
}
