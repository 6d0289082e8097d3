package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/diligence/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, filename, status, page_count, chunk_count, error_message, indexed_at, created_at`

// DocumentRepository manages the documents the external chunker registers.
// Rows are never created here.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

// List returns every document, newest first
func (r *DocumentRepository) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// Delete removes the document. Its chunks go with it through the foreign key.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SyncIndexStatus derives the document status from its chunks. A document
// stays INDEXING while any chunk is pending or processing. Once none are it
// becomes INDEXED, or FAILED when some chunk gave up, and chunk_count is set.
func (r *DocumentRepository) SyncIndexStatus(ctx context.Context, id string) (domain.DocumentStatus, error) {
	var status domain.DocumentStatus
	err := r.db.QueryRow(ctx,
		`WITH progress AS (
			 SELECT COUNT(*) AS total,
			        COUNT(*) FILTER (WHERE embedding_status IN ('pending', 'processing')) AS open,
			        COUNT(*) FILTER (WHERE embedding_status = 'failed') AS failed,
			        MIN(error) FILTER (WHERE embedding_status = 'failed') AS first_error
			 FROM document_chunks
			 WHERE document_id = $1
		 )
		 UPDATE documents d
		 SET status = CASE
		         WHEN p.open > 0 THEN 'INDEXING'
		         WHEN p.failed > 0 THEN 'FAILED'
		         ELSE 'INDEXED'
		     END,
		     chunk_count = p.total,
		     error_message = CASE
		         WHEN p.open = 0 AND p.failed > 0
		         THEN format('%s of %s chunks failed to embed: %s', p.failed, p.total, COALESCE(p.first_error, ''))
		         ELSE ''
		     END,
		     indexed_at = CASE WHEN p.open = 0 AND p.failed = 0 THEN now() END
		 FROM progress p
		 WHERE d.id = $1
		 RETURNING d.status`,
		id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrDocumentNotFound
		}
		return "", err
	}
	return status, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	if err := row.Scan(&d.ID, &d.Filename, &d.Status, &d.PageCount, &d.ChunkCount, &d.ErrorMessage, &d.IndexedAt, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
