package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"packagesync/internal/repository"
	retrierconfig "packagesync/pkg/retrier"
	"packagesync/pkg/retrier/backoff_adapter"
)

const (
	table = "kv"

	busyRetryAttempts = 3
	busyRetryDelay    = 20 * time.Millisecond
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLite хранилище поверх таблицы kv(key, value, updated_at).
// SQLITE_BUSY повторяется с линейной задержкой.
type SQLite struct {
	querier Querier
	now     func() time.Time
	retrier retrierconfig.Retrier
}

func NewSQLite(querier Querier) *SQLite {
	return &SQLite{
		querier: querier,
		now:     time.Now,
		retrier: backoff_adapter.New(retrierconfig.LinearConfig(
			busyRetryAttempts,
			busyRetryDelay,
			repository.IsSQLiteBusy,
		)),
	}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := qb.
		Select("value").
		From(table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected kv get query error: %w", err)
	}

	var value []byte
	err = s.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		return s.querier.QueryRow(ctx, query, args...).Scan(&value)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("unexpected kv get error: %w", err)
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := qb.
		Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, value, s.now().UTC().UnixMilli()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("unexpected kv set query error: %w", err)
	}

	err = s.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		_, err := s.querier.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("unexpected kv set error: %w", err)
	}
	return nil
}
