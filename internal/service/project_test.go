package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/pagination"
	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleQuestionnaire() *questionnaire.Questionnaire {
	return &questionnaire.Questionnaire{Sections: []questionnaire.Section{
		{Name: "Financial", Questions: []questionnaire.Question{
			{ID: "fin-1", Text: "What was revenue?", Type: "factual"},
			{ID: "fin-2", Text: "What is the debt load?", Type: "factual"},
		}},
		{Name: "Legal", Questions: []questionnaire.Question{
			{ID: "legal-1", Text: "Any pending litigation?", Type: "factual"},
		}},
	}}
}

type projectFixture struct {
	projects  *MockProjectRepository
	questions *MockQuestionRepository
	answers   *MockAnswerRepository
	tx        *testTxRunner
}

func newProjectFixture() (*projectFixture, *ProjectService) {
	f := &projectFixture{
		projects:  new(MockProjectRepository),
		questions: new(MockQuestionRepository),
		answers:   new(MockAnswerRepository),
	}
	f.tx = &testTxRunner{repos: &testTxRepos{projects: f.projects, questions: f.questions}}
	svc := NewProjectServiceWithUUIDGen(f.projects, f.questions, f.answers, f.tx, sampleQuestionnaire(),
		NewMockUUIDGenerator("project-1", "question-1", "question-2", "question-3"))
	return f, svc
}

func TestProjectService_Create(t *testing.T) {
	f, svc := newProjectFixture()

	f.projects.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Project) bool {
		return p.ID == "project-1" && p.Name == "Acme Acquisition" && p.Status == domain.ProjectStatusDraft
	})).Return(nil)
	f.questions.On("Create", mock.Anything, mock.AnythingOfType("*domain.Question")).Return(nil)

	detail, err := svc.Create(context.Background(), CreateProjectInput{
		Name:        "  Acme Acquisition ",
		Description: "Target review",
		QuestionIDs: []string{"legal-1", "fin-1"},
		Questions:   []QuestionInput{{Text: "Who are the key customers?"}},
	})

	require.NoError(t, err)
	assert.True(t, f.tx.called)
	assert.Equal(t, "project-1", detail.ID)
	require.Len(t, detail.Questions, 3)

	assert.Equal(t, "question-1", detail.Questions[0].ID)
	assert.Equal(t, "Legal", detail.Questions[0].Section)
	assert.Equal(t, "Any pending litigation?", detail.Questions[0].Text)
	assert.Equal(t, 0, detail.Questions[0].OrderIndex)

	assert.Equal(t, "Financial", detail.Questions[1].Section)
	assert.Equal(t, 1, detail.Questions[1].OrderIndex)

	assert.Equal(t, domain.DefaultSection, detail.Questions[2].Section)
	assert.Equal(t, 2, detail.Questions[2].OrderIndex)
	assert.Equal(t, "project-1", detail.Questions[2].ProjectID)

	f.questions.AssertNumberOfCalls(t, "Create", 3)
}

func TestProjectService_Create_UnknownSampleQuestion(t *testing.T) {
	f, svc := newProjectFixture()

	_, err := svc.Create(context.Background(), CreateProjectInput{
		Name:        "Acme",
		QuestionIDs: []string{"fin-1", "nope"},
	})

	assert.ErrorIs(t, err, domain.ErrUnknownSampleQuestion)
	assert.Contains(t, err.Error(), "nope")
	assert.False(t, f.tx.called)
}

func TestProjectService_Create_Validation(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, svc := newProjectFixture()
		_, err := svc.Create(context.Background(), CreateProjectInput{QuestionIDs: []string{"fin-1"}})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})

	t.Run("no questions", func(t *testing.T) {
		_, svc := newProjectFixture()
		_, err := svc.Create(context.Background(), CreateProjectInput{Name: "Acme"})

		assert.ErrorIs(t, err, domain.ErrNoQuestions)
	})

	t.Run("blank custom question", func(t *testing.T) {
		_, svc := newProjectFixture()
		_, err := svc.Create(context.Background(), CreateProjectInput{
			Name:      "Acme",
			Questions: []QuestionInput{{Section: "Ops", Text: "  "}},
		})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})
}

func TestProjectService_Create_RepositoryError(t *testing.T) {
	f, svc := newProjectFixture()
	f.projects.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Create(context.Background(), CreateProjectInput{Name: "Acme", QuestionIDs: []string{"fin-1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create project")
	f.questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectService_Get(t *testing.T) {
	f, svc := newProjectFixture()
	project := &domain.Project{ID: "p1", Name: "Acme", Status: domain.ProjectStatusReady}
	questions := []*domain.Question{
		domain.NewQuestion("q1", "p1", "", "Q1?", 0),
		domain.NewQuestion("q2", "p1", "", "Q2?", 1),
	}
	answer := &domain.Answer{ID: "a1", QuestionID: "q1"}

	f.projects.On("GetByID", mock.Anything, "p1").Return(project, nil)
	f.questions.On("ListByProject", mock.Anything, "p1").Return(questions, nil)
	f.answers.On("ListByProject", mock.Anything, "p1").Return(map[string]*domain.Answer{"q1": answer}, nil)

	detail, err := svc.Get(context.Background(), "p1")

	require.NoError(t, err)
	assert.Same(t, project, detail.Project)
	require.Len(t, detail.Questions, 2)
	assert.Same(t, answer, detail.Questions[0].Answer)
	assert.Nil(t, detail.Questions[1].Answer)
}

func TestProjectService_Get_NotFound(t *testing.T) {
	f, svc := newProjectFixture()
	f.projects.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrProjectNotFound)

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectService_List(t *testing.T) {
	f, svc := newProjectFixture()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := pagination.EncodeCursor("p9", ts)

	page := &ProjectPageResult{
		Items:      []*domain.ProjectSummary{{Project: domain.Project{ID: "p8"}, QuestionCount: 4, AnsweredCount: 1}},
		NextCursor: "next",
		HasMore:    true,
	}
	f.projects.On("ListWithCursor", mock.Anything, &pagination.Cursor{LastID: "p9", Timestamp: ts}, 10).Return(page, nil)

	out, err := svc.List(context.Background(), ListProjectsInput{Cursor: cursor, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, page.Items, out.Items)
	assert.Equal(t, "next", out.Cursor)
	assert.True(t, out.HasMore)
}

func TestProjectService_List_DefaultsAndBadCursor(t *testing.T) {
	f, svc := newProjectFixture()
	f.projects.On("ListWithCursor", mock.Anything, (*pagination.Cursor)(nil), defaultProjectPageSize).
		Return(&ProjectPageResult{Items: []*domain.ProjectSummary{}}, nil)

	out, err := svc.List(context.Background(), ListProjectsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.False(t, out.HasMore)

	_, err = svc.List(context.Background(), ListProjectsInput{Cursor: "%%%"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageCursor)
}

func TestProjectService_List_CapsLimit(t *testing.T) {
	f, svc := newProjectFixture()
	f.projects.On("ListWithCursor", mock.Anything, (*pagination.Cursor)(nil), maxProjectPageSize).
		Return(&ProjectPageResult{Items: []*domain.ProjectSummary{}}, nil)

	_, err := svc.List(context.Background(), ListProjectsInput{Limit: 5000})
	require.NoError(t, err)
	f.projects.AssertExpectations(t)
}

func TestProjectService_Delete(t *testing.T) {
	f, svc := newProjectFixture()
	f.projects.On("Delete", mock.Anything, "p1").Return(nil)
	f.projects.On("Delete", mock.Anything, "missing").Return(domain.ErrProjectNotFound)

	assert.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), domain.ErrProjectNotFound)
}

func TestProjectService_SampleQuestions(t *testing.T) {
	_, svc := newProjectFixture()
	assert.Equal(t, 3, svc.SampleQuestions().Count())

	empty := NewProjectService(nil, nil, nil, nil, nil)
	assert.NotNil(t, empty.SampleQuestions().Sections)
}
