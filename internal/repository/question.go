package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionRepository struct {
	db dbtx
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: pool}
}

func NewQuestionRepositoryWithTx(tx pgx.Tx) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO questions (id, project_id, section, question_text, order_index)
		 VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.ProjectID, q.Section, q.Text, q.OrderIndex,
	)
	return err
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	var q domain.Question
	err := r.db.QueryRow(ctx,
		`SELECT id, project_id, section, question_text, order_index FROM questions WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.ProjectID, &q.Section, &q.Text, &q.OrderIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

// ListByProject returns a project's questions in questionnaire order
func (r *QuestionRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, section, question_text, order_index
		 FROM questions
		 WHERE project_id = $1
		 ORDER BY order_index ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.Section, &q.Text, &q.OrderIndex); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}
