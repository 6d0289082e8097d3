package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/diligence/internal/api"
	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	List(ctx context.Context) ([]*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentHandler serves the documents the chunker has registered. Upload
// happens outside this service.
type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		api.HandleError(w, err)
		return
	}

	api.NoContent(w)
}
