package service

import (
	"context"
	"log"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for indexed documents
type DocumentRepositoryInterface interface {
	List(ctx context.Context) ([]*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentService exposes the documents answers are retrieved from
type DocumentService struct {
	docs DocumentRepositoryInterface
}

func NewDocumentService(docs DocumentRepositoryInterface) *DocumentService {
	return &DocumentService{docs: docs}
}

// List returns every document with its indexing status
func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.docs.List(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// Delete removes a document and its chunks. Answers already citing it keep
// their citations.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		Operation: "delete_document",
	})
	defer span.End()

	if err := s.docs.Delete(ctx, id); err != nil {
		span.SetError(err)
		return err
	}
	log.Printf("documents: deleted %s and its chunks", id)
	return nil
}
