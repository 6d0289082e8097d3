package domain

import "time"

// DocumentStatus tracks how far a source document is through indexing
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusIndexing DocumentStatus = "INDEXING"
	DocumentStatusIndexed  DocumentStatus = "INDEXED"
	DocumentStatusFailed   DocumentStatus = "FAILED"
)

// Document is a source file registered by the external chunker. Its status
// is derived from the embedding state of its chunks.
type Document struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	Status       DocumentStatus `json:"status"`
	PageCount    int            `json:"page_count"`
	ChunkCount   int            `json:"chunk_count"`
	ErrorMessage string         `json:"error_message"`
	IndexedAt    *time.Time     `json:"indexed_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Settled reports whether indexing has finished, successfully or not
func (s DocumentStatus) Settled() bool {
	return s == DocumentStatusIndexed || s == DocumentStatusFailed
}
