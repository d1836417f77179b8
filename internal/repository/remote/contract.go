//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=remote_test
package remote

import (
	"context"

	"packagesync/internal/entities"
)

type Transport interface {
	ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error)
	GetPackage(ctx context.Context, id string) (*entities.Package, error)
	UpdateStatus(ctx context.Context, id string, status entities.PackageStatusType, sc entities.StatusContext) (*entities.Package, error)
	CreatePackage(ctx context.Context, p entities.Package) (*entities.Package, error)
	DeletePackage(ctx context.Context, id string) error
	BatchUpdateStatus(ctx context.Context, updates []entities.StatusUpdate) ([]entities.Package, error)
	Ping(ctx context.Context) error
}

// PushStream одно соединение с каналом серверных событий.
// Run блокируется до разрыва соединения или отмены ctx.
type PushStream interface {
	Run(ctx context.Context, handle func(entities.PushEvent)) error
}
