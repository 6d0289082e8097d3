package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/diligence/internal/api"
	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/go-chi/chi/v5"
)

type ProjectService interface {
	Create(ctx context.Context, input service.CreateProjectInput) (*service.ProjectDetail, error)
	Get(ctx context.Context, id string) (*service.ProjectDetail, error)
	List(ctx context.Context, input service.ListProjectsInput) (*service.ListProjectsOutput, error)
	Delete(ctx context.Context, id string) error
	SampleQuestions() *questionnaire.Questionnaire
}

type ProjectGenerator interface {
	GenerateProject(ctx context.Context, projectID string) (*service.ProjectGenerationResult, error)
	StreamProject(ctx context.Context, projectID string) (<-chan service.ProgressEvent, error)
}

type ProjectHandler struct {
	projects  ProjectService
	generator ProjectGenerator
}

func NewProjectHandler(projects ProjectService, generator ProjectGenerator) *ProjectHandler {
	return &ProjectHandler{projects: projects, generator: generator}
}

type QuestionRequest struct {
	Section string `json:"section" validate:"max=200"`
	Text    string `json:"text" validate:"required,max=4000"`
}

type CreateProjectRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	QuestionIDs []string          `json:"question_ids" validate:"dive,required"`
	Questions   []QuestionRequest `json:"questions" validate:"dive"`
}

func (h *ProjectHandler) SampleQuestions(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.projects.SampleQuestions())
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	input := service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		QuestionIDs: req.QuestionIDs,
	}
	for _, q := range req.Questions {
		input.Questions = append(input.Questions, service.QuestionInput{Section: q.Section, Text: q.Text})
	}

	project, err := h.projects.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	input := service.ListProjectsInput{
		Cursor: r.URL.Query().Get("cursor"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		input.Limit = limit
	}

	page, err := h.projects.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, page)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		api.HandleError(w, err)
		return
	}

	api.NoContent(w)
}

// Generate answers every question of the project and returns the summary
func (h *ProjectHandler) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.GenerateProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

// GenerateStream answers every question of the project, pushing progress as
// server-sent events. Missing projects fail before the stream starts.
func (h *ProjectHandler) GenerateStream(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	events, err := h.generator.StreamProject(r.Context(), projectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sse := api.NewSSEWriter(w)
	writeFailed := false
	for event := range events {
		if writeFailed {
			// drain until the run notices the cancelled request and closes
			continue
		}
		if err := sse.Send(event); err != nil {
			log.Printf("handlers: stream for project %s lost client: %v", projectID, err)
			writeFailed = true
		}
	}
}
