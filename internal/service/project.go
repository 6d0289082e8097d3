package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/pagination"
	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/cloo-solutions/diligence/internal/telemetry"
)

const (
	defaultProjectPageSize = 20
	maxProjectPageSize     = 100
)

// ProjectRepositoryInterface defines the repository interface for project persistence
type ProjectRepositoryInterface interface {
	ProjectStatusRepository
	Create(ctx context.Context, p *domain.Project) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ProjectPageResult, error)
	Delete(ctx context.Context, id string) error
}

// QuestionRepositoryInterface defines the repository interface for question persistence
type QuestionRepositoryInterface interface {
	QuestionReader
	Create(ctx context.Context, q *domain.Question) error
}

// AnswerLister returns the answers of every question in a project, keyed by question ID
type AnswerLister interface {
	ListByProject(ctx context.Context, projectID string) (map[string]*domain.Answer, error)
}

type ProjectPageResult struct {
	Items      []*domain.ProjectSummary
	NextCursor string
	HasMore    bool
}

// ProjectService handles project and question management
type ProjectService struct {
	projects  ProjectRepositoryInterface
	questions QuestionRepositoryInterface
	answers   AnswerLister
	txRunner  TxRunner
	samples   *questionnaire.Questionnaire
	uuidGen   UUIDGenerator
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(
	projects ProjectRepositoryInterface,
	questions QuestionRepositoryInterface,
	answers AnswerLister,
	txRunner TxRunner,
	samples *questionnaire.Questionnaire,
) *ProjectService {
	return NewProjectServiceWithUUIDGen(projects, questions, answers, txRunner, samples, &DefaultUUIDGenerator{})
}

// NewProjectServiceWithUUIDGen creates a new ProjectService with custom UUID generator (for testing)
func NewProjectServiceWithUUIDGen(
	projects ProjectRepositoryInterface,
	questions QuestionRepositoryInterface,
	answers AnswerLister,
	txRunner TxRunner,
	samples *questionnaire.Questionnaire,
	uuidGen UUIDGenerator,
) *ProjectService {
	if samples == nil {
		samples = &questionnaire.Questionnaire{Sections: []questionnaire.Section{}}
	}
	return &ProjectService{
		projects:  projects,
		questions: questions,
		answers:   answers,
		txRunner:  txRunner,
		samples:   samples,
		uuidGen:   uuidGen,
	}
}

// QuestionInput is a free-form question added to a new project
type QuestionInput struct {
	Section string
	Text    string
}

// CreateProjectInput represents the input for creating a project.
// Sample questions come first, in the order given, followed by Questions.
type CreateProjectInput struct {
	Name        string
	Description string
	QuestionIDs []string
	Questions   []QuestionInput
}

type ListProjectsInput struct {
	Cursor string
	Limit  int
}

type ListProjectsOutput = pagination.PageResult[*domain.ProjectSummary]

// ProjectDetail is a project with its questions and any answers
type ProjectDetail struct {
	*domain.Project
	Questions []*domain.Question `json:"questions"`
}

// SampleQuestions returns the questionnaire new projects pick from
func (s *ProjectService) SampleQuestions() *questionnaire.Questionnaire {
	return s.samples
}

// Create creates a project and its questions in one transaction
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*ProjectDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProjectService.Create", telemetry.SpanAttributes{
		Operation: "create_project",
	})
	defer span.End()

	now := time.Now().UTC()
	project := domain.NewProject(s.uuidGen.NewString(), strings.TrimSpace(input.Name), strings.TrimSpace(input.Description), now)
	if err := domain.ValidateProject(project); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid project", err)
	}

	questions, err := s.buildQuestions(project.ID, input)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		for _, q := range questions {
			if err := repos.Questions().Create(ctx, q); err != nil {
				return fmt.Errorf("failed to create question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ProjectDetail{Project: project, Questions: questions}, nil
}

func (s *ProjectService) buildQuestions(projectID string, input CreateProjectInput) ([]*domain.Question, error) {
	questions := make([]*domain.Question, 0, len(input.QuestionIDs)+len(input.Questions))

	for _, id := range input.QuestionIDs {
		entry, ok := s.samples.Lookup(id)
		if !ok {
			return nil, domain.NewDomainErrorWithCause(
				domain.ErrUnknownSampleQuestion.Code,
				domain.ErrUnknownSampleQuestion.Message,
				fmt.Errorf("id %q", id),
			)
		}
		questions = append(questions, domain.NewQuestion(s.uuidGen.NewString(), projectID, entry.Section, entry.Question.Text, len(questions)))
	}

	for _, in := range input.Questions {
		q := domain.NewQuestion(s.uuidGen.NewString(), projectID, strings.TrimSpace(in.Section), strings.TrimSpace(in.Text), len(questions))
		if err := domain.ValidateQuestion(q); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid question", err)
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// Get returns a project with its questions in order, each carrying its answer if one exists
func (s *ProjectService) Get(ctx context.Context, id string) (*ProjectDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProjectService.Get", telemetry.SpanAttributes{
		ProjectID: id,
		Operation: "get_project",
	})
	defer span.End()

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		q.Answer = answers[q.ID]
	}

	return &ProjectDetail{Project: project, Questions: questions}, nil
}

// List returns a page of projects, newest first
func (s *ProjectService) List(ctx context.Context, input ListProjectsInput) (*ListProjectsOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrInvalidPageCursor.Code, domain.ErrInvalidPageCursor.Message, err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultProjectPageSize
	}
	if limit > maxProjectPageSize {
		limit = maxProjectPageSize
	}

	result, err := s.projects.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListProjectsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Delete removes a project together with its questions and answers
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}
