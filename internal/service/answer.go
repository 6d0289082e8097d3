package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/openai"
	"github.com/cloo-solutions/diligence/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// NoDocumentsAnswerText is stored when retrieval finds nothing to ground an answer on
const NoDocumentsAnswerText = "No documents have been indexed yet. Please upload and index documents first."

// LLMGateway produces a completion for a prompt. Failures are reported
// in-band as text starting with openai.ErrorPrefix.
type LLMGateway interface {
	Complete(ctx context.Context, prompt string, temperature float32) string
}

// AnswerRepositoryInterface defines the repository interface for answer persistence
type AnswerRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Answer, error)
	GetByQuestionID(ctx context.Context, questionID string) (*domain.Answer, error)
	// CreateIfAbsent stores a unless the question already has an answer and
	// returns whichever row is stored.
	CreateIfAbsent(ctx context.Context, a *domain.Answer) (*domain.Answer, error)
	UpdateReview(ctx context.Context, id string, status domain.AnswerStatus, manualAnswer string) (*domain.Answer, error)
}

// QuestionReader defines the question lookups the answer pipeline needs
type QuestionReader interface {
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Question, error)
}

// ProjectStatusRepository defines the project lookups the batch runner needs
type ProjectStatusRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) error
}

// AnswerService runs the retrieve, generate, merge, parse and cite pipeline
type AnswerService struct {
	answers   AnswerRepositoryInterface
	questions QuestionReader
	projects  ProjectStatusRepository
	retriever ChunkRetriever
	llm       LLMGateway
	settings  config.AnswerSettings
	uuidGen   UUIDGenerator
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(
	answers AnswerRepositoryInterface,
	questions QuestionReader,
	projects ProjectStatusRepository,
	retriever ChunkRetriever,
	llm LLMGateway,
	settings config.AnswerSettings,
) *AnswerService {
	return NewAnswerServiceWithUUIDGen(answers, questions, projects, retriever, llm, settings, &DefaultUUIDGenerator{})
}

// NewAnswerServiceWithUUIDGen creates a new AnswerService with custom UUID generator (for testing)
func NewAnswerServiceWithUUIDGen(
	answers AnswerRepositoryInterface,
	questions QuestionReader,
	projects ProjectStatusRepository,
	retriever ChunkRetriever,
	llm LLMGateway,
	settings config.AnswerSettings,
	uuidGen UUIDGenerator,
) *AnswerService {
	return &AnswerService{
		answers:   answers,
		questions: questions,
		projects:  projects,
		retriever: retriever,
		llm:       llm,
		settings:  settings,
		uuidGen:   uuidGen,
	}
}

// Generate returns the answer for a question, running the pipeline only
// when no answer exists yet.
func (s *AnswerService) Generate(ctx context.Context, questionID string) (*domain.Answer, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return s.answerQuestion(ctx, q, nil)
}

// GetAnswer retrieves an answer by ID
func (s *AnswerService) GetAnswer(ctx context.Context, id string) (*domain.Answer, error) {
	return s.answers.GetByID(ctx, id)
}

func (s *AnswerService) answerQuestion(ctx context.Context, q *domain.Question, progress ProgressFunc) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "answer.generate", telemetry.SpanAttributes{
		ProjectID:  q.ProjectID,
		QuestionID: q.ID,
		Operation:  "generate",
	})
	defer span.End()

	stage := func(st Stage) {
		telemetry.AddBreadcrumb(ctx, "answer", string(st))
		progress.emit(ProgressEvent{Type: EventTypeProgress, Stage: st, ProjectID: q.ProjectID, QuestionID: q.ID})
	}

	existing, err := s.answers.GetByQuestionID(ctx, q.ID)
	if err == nil {
		stage(StageCached)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAnswerNotFound) {
		span.SetError(err)
		return nil, fmt.Errorf("failed to check existing answer: %w", err)
	}

	stage(StageRetrievingContext)
	chunks, err := s.retriever.Search(ctx, q.Text, s.settings.RetrievalTopK)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	answer := &domain.Answer{
		ID:         s.uuidGen.NewString(),
		QuestionID: q.ID,
		Status:     domain.AnswerStatusGenerated,
		Citations:  []domain.Citation{},
		CreatedAt:  time.Now().UTC(),
	}

	if len(chunks) == 0 {
		answer.AIAnswer = NoDocumentsAnswerText
		answer.Confidence = 0
		answer.Answerability = domain.AnswerabilityNo
	} else {
		s.synthesize(ctx, q, chunks, answer, stage)
	}

	if err := domain.ValidateAnswer(answer); err != nil {
		err = domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "generated answer is invalid", err)
		span.SetError(err)
		return nil, err
	}

	saved, err := s.answers.CreateIfAbsent(ctx, answer)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	stage(StageComplete)
	return saved, nil
}

// synthesize fills answer from two sampled variants merged into one
func (s *AnswerService) synthesize(ctx context.Context, q *domain.Question, chunks []domain.RetrievedChunk, answer *domain.Answer, stage func(Stage)) {
	stage(StageParallelGeneration)
	prompt := BuildAnswerPrompt(q.Text, chunks)

	// both calls always run to completion; the gateway never fails
	var g errgroup.Group
	g.Go(func() error {
		answer.VariantA = s.llm.Complete(ctx, prompt, s.settings.TempA)
		return nil
	})
	g.Go(func() error {
		answer.VariantB = s.llm.Complete(ctx, prompt, s.settings.TempB)
		return nil
	})
	_ = g.Wait()

	stage(StageMergingAnswers)
	merged := s.llm.Complete(ctx, BuildMergePrompt(q.Text, answer.VariantA, answer.VariantB), s.settings.MergeTemp)
	if openai.IsErrorText(merged) {
		log.Printf("answer: merge failed for question %s: %s", q.ID, merged)
	}

	parsed := ParseAnswerResponse(merged)

	stage(StageFormattingCitations)
	text, citations := FormatCitations(parsed.Text, chunks)

	answer.AIAnswer = text
	answer.Citations = citations
	answer.Confidence = parsed.Confidence
	answer.Answerability = parsed.Answerability
}
