package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnknownDocName is shown for chunks whose source document has no name
const UnknownDocName = "Unknown"

// ChunkMetadata identifies where a chunk came from
type ChunkMetadata struct {
	DocID      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

// RetrievedChunk is a ranked search hit. Read-only to the answer pipeline.
type RetrievedChunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// NormalizeRetrievedChunk validates a chunk at the retrieval boundary and
// fills the display defaults used by prompts and citations.
func NormalizeRetrievedChunk(c RetrievedChunk) (RetrievedChunk, error) {
	if c.ID == "" {
		return c, NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidRetrievedChunk.Message, fmt.Errorf("chunk ID is required"))
	}
	if strings.TrimSpace(c.Text) == "" {
		return c, NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidRetrievedChunk.Message, fmt.Errorf("chunk %s has no text", c.ID))
	}
	if c.Metadata.Page < 0 {
		return c, NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidRetrievedChunk.Message, fmt.Errorf("chunk %s has negative page", c.ID))
	}
	if strings.TrimSpace(c.Metadata.DocName) == "" {
		c.Metadata.DocName = UnknownDocName
	}
	return c, nil
}

// ChunkEmbeddingStatus tracks the embedding backfill of a stored chunk
type ChunkEmbeddingStatus string

const (
	ChunkEmbeddingStatusPending    ChunkEmbeddingStatus = "pending"
	ChunkEmbeddingStatusProcessing ChunkEmbeddingStatus = "processing"
	ChunkEmbeddingStatusCompleted  ChunkEmbeddingStatus = "completed"
	ChunkEmbeddingStatusFailed     ChunkEmbeddingStatus = "failed"
)

// DocumentChunk is a stored chunk as written by the external chunker
type DocumentChunk struct {
	ID         string
	DocumentID string
	Page       int
	ChunkIndex int
	Content    string
	Status     ChunkEmbeddingStatus
	Retries    int32
	Error      string
	CreatedAt  time.Time
}

// IsValidChunkEmbeddingStatus checks if a ChunkEmbeddingStatus is valid
func IsValidChunkEmbeddingStatus(s ChunkEmbeddingStatus) bool {
	switch s {
	case ChunkEmbeddingStatusPending, ChunkEmbeddingStatusProcessing, ChunkEmbeddingStatusCompleted, ChunkEmbeddingStatusFailed:
		return true
	}
	return false
}
