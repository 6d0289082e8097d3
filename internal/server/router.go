package server

import (
	"net/http"

	"github.com/cloo-solutions/diligence/internal/api"
	"github.com/cloo-solutions/diligence/internal/api/handlers"
	"github.com/cloo-solutions/diligence/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// RouterConfig wires handlers into the router. A nil AuthValidator leaves
// the /api routes open.
type RouterConfig struct {
	AppName         string
	AuthValidator   middleware.AuthValidator
	ProjectHandler  *handlers.ProjectHandler
	AnswerHandler   *handlers.AnswerHandler
	DocumentHandler *handlers.DocumentHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok", "app": cfg.AppName})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Route("/projects", func(r chi.Router) {
			r.Get("/sample-questions", cfg.ProjectHandler.SampleQuestions)
			r.Post("/", cfg.ProjectHandler.Create)
			r.Get("/", cfg.ProjectHandler.List)
			r.Get("/{projectID}", cfg.ProjectHandler.Get)
			r.Delete("/{projectID}", cfg.ProjectHandler.Delete)
			r.Post("/{projectID}/generate", cfg.ProjectHandler.Generate)
			r.Get("/{projectID}/generate-stream", cfg.ProjectHandler.GenerateStream)
		})

		r.Route("/answers", func(r chi.Router) {
			r.Get("/{answerID}", cfg.AnswerHandler.Get)
			r.Patch("/{answerID}", cfg.AnswerHandler.Review)
			r.Post("/{questionID}/generate", cfg.AnswerHandler.Generate)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{documentID}", cfg.DocumentHandler.Get)
			r.Delete("/{documentID}", cfg.DocumentHandler.Delete)
		})
	})

	return r
}
