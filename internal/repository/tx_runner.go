package repository

import (
	"context"

	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner hands a callback repositories bound to one transaction. The
// transaction commits when the callback returns nil and rolls back otherwise,
// including on panic.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Projects() service.ProjectRepositoryInterface {
	return NewProjectRepositoryWithTx(r.tx)
}

func (r txRepos) Questions() service.QuestionRepositoryInterface {
	return NewQuestionRepositoryWithTx(r.tx)
}
