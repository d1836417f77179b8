package querier

import (
	"context"
	"database/sql"

	trmsql "github.com/avito-tech/go-transaction-manager/sql"
)

// Querier выполняет запросы в транзакции из контекста, если она есть, иначе напрямую в базе.
type Querier struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
}

func New(db *sql.DB, getter *trmsql.CtxGetter) *Querier {
	return &Querier{
		db:     db,
		getter: getter,
	}
}

func (q *Querier) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	executor := q.get(ctx)
	return executor.ExecContext(ctx, query, args...)
}

func (q *Querier) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	executor := q.get(ctx)
	return executor.QueryContext(ctx, query, args...)
}

func (q *Querier) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	executor := q.get(ctx)
	return executor.QueryRowContext(ctx, query, args...)
}

func (q *Querier) get(ctx context.Context) trmsql.Tr {
	return q.getter.DefaultTrOrDB(ctx, q.db)
}
