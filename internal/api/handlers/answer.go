package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/diligence/internal/api"
	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AnswerService interface {
	Generate(ctx context.Context, questionID string) (*domain.Answer, error)
	GetAnswer(ctx context.Context, id string) (*domain.Answer, error)
	ReviewAnswer(ctx context.Context, id string, status domain.AnswerStatus, manualAnswer string) (*domain.Answer, error)
}

type AnswerHandler struct {
	svc AnswerService
}

func NewAnswerHandler(svc AnswerService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

type ReviewAnswerRequest struct {
	Status       string `json:"status" validate:"required,oneof=PENDING GENERATED CONFIRMED REJECTED MANUAL"`
	ManualAnswer string `json:"manual_answer" validate:"required_if=Status MANUAL"`
}

// Generate answers one question. Pipeline failures are stored on the answer
// itself, so the only expected client error is an unknown question.
func (h *AnswerHandler) Generate(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	answer, err := h.svc.Generate(r.Context(), questionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}

func (h *AnswerHandler) Get(w http.ResponseWriter, r *http.Request) {
	answerID := chi.URLParam(r, "answerID")

	answer, err := h.svc.GetAnswer(r.Context(), answerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}

func (h *AnswerHandler) Review(w http.ResponseWriter, r *http.Request) {
	answerID := chi.URLParam(r, "answerID")

	var req ReviewAnswerRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	answer, err := h.svc.ReviewAnswer(r.Context(), answerID, domain.AnswerStatus(req.Status), req.ManualAnswer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}
