//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=package_status_put_test
package package_status_put

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
	UpdateStatus(ctx context.Context, id string, status entities.PackageStatusType, sc entities.StatusContext) (*entities.Package, error)
}
