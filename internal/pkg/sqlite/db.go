package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/pressly/goose/v3"
	"packagesync/internal/pkg/config"
	"packagesync/pkg/logger"
	retrierconfig "packagesync/pkg/retrier"
	"packagesync/pkg/retrier/backoff_adapter"

	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	// sqlite допускает одного писателя
	maxOpenConns = 1

	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsedTime  = 10 * time.Second
	randomization   = 0.5
	multiplier      = 2
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open открывает файл базы, проверяет соединение и применяет миграции.
func Open(ctx context.Context, log logger.Logger, cfg *config.Storage) (*sql.DB, error) {
	db, err := sql.Open(driverName, newDsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	dbLog := log.With(
		logger.NewField("path", cfg.Path),
	)

	if err := pingDatabase(ctx, dbLog, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	dbLog.Info("sqlite storage ready")
	return db, nil
}

func newDsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + q.Encode()
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func pingDatabase(ctx context.Context, log logger.Logger, db *sql.DB) error {
	retryConfig := retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
		ShouldRetry:     nil, // все ошибки ретраим
	}

	retrier := backoff_adapter.New(retryConfig)

	var attempt uint64
	err := retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		log.With(
			logger.NewField("attempt", attempt),
		).Debug("attempting database connection")

		return db.PingContext(ctx)
	})
	if err != nil {
		log.With(
			logger.NewField("error", err),
			logger.NewField("attempts", attempt),
		).Error("database connection failed after retries")
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
