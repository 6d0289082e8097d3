package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const answerColumns = `id, question_id, ai_answer, answer_variant_a, answer_variant_b, manual_answer,
	citations, confidence, is_answerable, status, created_at`

type AnswerRepository struct {
	db dbtx
}

func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{db: pool}
}

// CreateIfAbsent inserts the answer unless its question already has one.
// Either way the stored row is returned, so concurrent generators for the
// same question converge on a single answer.
func (r *AnswerRepository) CreateIfAbsent(ctx context.Context, a *domain.Answer) (*domain.Answer, error) {
	citations, err := json.Marshal(nonNilCitations(a.Citations))
	if err != nil {
		return nil, fmt.Errorf("failed to encode citations: %w", err)
	}

	stored, err := scanAnswer(r.db.QueryRow(ctx,
		`INSERT INTO answers (`+answerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (question_id) DO NOTHING
		 RETURNING `+answerColumns,
		a.ID, a.QuestionID, a.AIAnswer, a.VariantA, a.VariantB, a.ManualAnswer,
		citations, a.Confidence, a.Answerability, a.Status, a.CreatedAt,
	))
	if errors.Is(err, domain.ErrAnswerNotFound) {
		return r.GetByQuestionID(ctx, a.QuestionID)
	}
	return stored, err
}

func (r *AnswerRepository) GetByID(ctx context.Context, id string) (*domain.Answer, error) {
	return scanAnswer(r.db.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE id = $1`,
		id,
	))
}

func (r *AnswerRepository) GetByQuestionID(ctx context.Context, questionID string) (*domain.Answer, error) {
	return scanAnswer(r.db.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE question_id = $1`,
		questionID,
	))
}

func (r *AnswerRepository) UpdateReview(ctx context.Context, id string, status domain.AnswerStatus, manualAnswer string) (*domain.Answer, error) {
	return scanAnswer(r.db.QueryRow(ctx,
		`UPDATE answers SET status = $1, manual_answer = $2 WHERE id = $3
		 RETURNING `+answerColumns,
		status, manualAnswer, id,
	))
}

// ListByProject returns the project's answers keyed by question ID
func (r *AnswerRepository) ListByProject(ctx context.Context, projectID string) (map[string]*domain.Answer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.question_id, a.ai_answer, a.answer_variant_a, a.answer_variant_b, a.manual_answer,
		        a.citations, a.confidence, a.is_answerable, a.status, a.created_at
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE q.project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(map[string]*domain.Answer)
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers[a.QuestionID] = a
	}
	return answers, rows.Err()
}

func scanAnswer(row pgx.Row) (*domain.Answer, error) {
	var a domain.Answer
	var citations []byte
	err := row.Scan(&a.ID, &a.QuestionID, &a.AIAnswer, &a.VariantA, &a.VariantB, &a.ManualAnswer,
		&citations, &a.Confidence, &a.Answerability, &a.Status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, err
	}

	a.Citations = []domain.Citation{}
	if len(citations) > 0 {
		if err := json.Unmarshal(citations, &a.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations for answer %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func nonNilCitations(c []domain.Citation) []domain.Citation {
	if c == nil {
		return []domain.Citation{}
	}
	return c
}
