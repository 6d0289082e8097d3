package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/telemetry"
)

// QuestionError records why one question of a batch produced no answer
type QuestionError struct {
	QuestionID string `json:"question_id"`
	Error      string `json:"error"`
}

// ProjectGenerationResult summarizes a batch run over a project's questions
type ProjectGenerationResult struct {
	ProjectID string          `json:"project_id"`
	Total     int             `json:"total"`
	Generated int             `json:"generated"`
	Errors    []QuestionError `json:"errors"`
}

// GenerateProject answers every question of a project in order and marks the
// project READY. A failing question is recorded and the batch moves on.
func (s *AnswerService) GenerateProject(ctx context.Context, projectID string) (*ProjectGenerationResult, error) {
	questions, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.runProject(ctx, projectID, questions, nil)
}

// StreamProject starts a batch run and returns its events. The channel gets
// progress and error events while questions are processed, then a single
// complete event, and is closed when the run ends.
func (s *AnswerService) StreamProject(ctx context.Context, projectID string) (<-chan ProgressEvent, error) {
	questions, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	events := make(chan ProgressEvent, 16)
	go func() {
		defer close(events)

		send := func(e ProgressEvent) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		}

		result, err := s.runProject(ctx, projectID, questions, send)
		if err != nil {
			log.Printf("answer: stream for project %s stopped: %v", projectID, err)
			return
		}
		send(ProgressEvent{Type: EventTypeComplete, ProjectID: projectID, Result: result})
	}()

	return events, nil
}

func (s *AnswerService) loadProject(ctx context.Context, projectID string) ([]*domain.Question, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *AnswerService) runProject(ctx context.Context, projectID string, questions []*domain.Question, progress ProgressFunc) (*ProjectGenerationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "answer.generate_project", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "generate_project",
	})
	defer span.End()

	total := len(questions)
	result := &ProjectGenerationResult{
		ProjectID: projectID,
		Total:     total,
		Errors:    []QuestionError{},
	}

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		current := i + 1
		position := func(e ProgressEvent) {
			e.Current = current
			e.Total = total
			progress.emit(e)
		}

		if _, err := s.answerSafely(ctx, q, position); err != nil {
			log.Printf("answer: question %s failed: %v", q.ID, err)
			telemetry.CaptureError(ctx, err)
			result.Errors = append(result.Errors, QuestionError{QuestionID: q.ID, Error: err.Error()})
			position(ProgressEvent{
				Type:       EventTypeError,
				Stage:      StageError,
				ProjectID:  projectID,
				QuestionID: q.ID,
				Error:      err.Error(),
			})
			continue
		}
		result.Generated++
	}

	if err := s.projects.UpdateStatus(ctx, projectID, domain.ProjectStatusReady); err != nil {
		span.SetError(err)
		return result, fmt.Errorf("failed to mark project ready: %w", err)
	}

	log.Printf("answer: project %s done (%d/%d generated, %d errors)", projectID, result.Generated, result.Total, len(result.Errors))
	return result, nil
}

// answerSafely turns a panic inside one question into an error for that question
func (s *AnswerService) answerSafely(ctx context.Context, q *domain.Question, progress ProgressFunc) (answer *domain.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = fmt.Errorf("panic while answering question: %v", r)
		}
	}()
	return s.answerQuestion(ctx, q, progress)
}
