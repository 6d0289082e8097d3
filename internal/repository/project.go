package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/cloo-solutions/diligence/internal/pagination"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectSummarySelect = `
	SELECT p.id, p.name, p.description, p.status, p.created_at, p.updated_at,
	       COUNT(q.id) AS question_count,
	       COUNT(a.id) FILTER (WHERE a.status <> 'PENDING') AS answered_count
	FROM projects p
	LEFT JOIN questions q ON q.project_id = p.id
	LEFT JOIN answers a ON a.question_id = q.id`

type ProjectRepository struct {
	db dbtx
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: pool}
}

func NewProjectRepositoryWithTx(tx pgx.Tx) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		project.ID, project.Name, project.Description, project.Status, project.CreatedAt, project.UpdatedAt,
	)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListWithCursor returns projects newest first with question and answer counts.
// An answer counts as answered once it has left PENDING.
func (r *ProjectRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.ProjectPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			projectSummarySelect+`
			 WHERE (p.created_at, p.id) < ($1, $2)
			 GROUP BY p.id
			 ORDER BY p.created_at DESC, p.id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			projectSummarySelect+`
			 GROUP BY p.id
			 ORDER BY p.created_at DESC, p.id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ProjectSummary, 0, limit)
	for rows.Next() {
		var s domain.ProjectSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Status, &s.CreatedAt, &s.UpdatedAt, &s.QuestionCount, &s.AnsweredCount); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ProjectPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) error {
	if !domain.IsValidProjectStatus(status) {
		return domain.ErrInvalidProjectStatus
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project; questions and answers go with it through cascades
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
