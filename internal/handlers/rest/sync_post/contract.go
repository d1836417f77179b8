//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=sync_post_test
package sync_post

import (
	"context"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type handlerLogger interface {
	Debug(msg string, fields ...logger.Field)
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	SyncDefaults() entities.SyncOptions
	SyncPackages(ctx context.Context, opts *entities.SyncOptions) (*entities.SyncResult, error)
}
